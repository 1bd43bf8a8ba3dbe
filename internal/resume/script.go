package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var ErrScriptMissing = errors.New("resume script not found")

// ScriptRunner runs an external resume script with the upload's path as its
// only argument and reads JSON from stdout.
type ScriptRunner struct {
	Interpreter string
	Path        string
	Timeout     time.Duration
}

// Available reports whether the script file exists.
func (s ScriptRunner) Available() bool {
	if strings.TrimSpace(s.Path) == "" {
		return false
	}
	st, err := os.Stat(s.Path)
	return err == nil && !st.IsDir()
}

func (s ScriptRunner) Run(ctx context.Context, filename string, data []byte) (Parsed, error) {
	if !s.Available() {
		return Parsed{}, ErrScriptMissing
	}
	interp := strings.TrimSpace(s.Interpreter)
	if interp == "" {
		interp = "python3"
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	dir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return Parsed{}, err
	}
	defer os.RemoveAll(dir)

	tmpPath := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return Parsed{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, interp, s.Path, tmpPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Parsed{}, fmt.Errorf("resume script: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return DecodeParsed(stdout.Bytes())
}
