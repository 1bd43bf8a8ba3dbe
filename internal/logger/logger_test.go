package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitTo_LevelAndComponent(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	var buf bytes.Buffer
	InitTo(&buf, "production", "warn")

	l := Component("swipehire")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info must be filtered at warn, got %q", out)
	}
	if !strings.Contains(out, `"component":"swipehire"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("expected a tagged JSON warn line, got %q", out)
	}
}

func TestInitTo_UnknownLevelIsInfo(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	InitTo(&bytes.Buffer{}, "development", "loud")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info, got %s", zerolog.GlobalLevel())
	}
}
