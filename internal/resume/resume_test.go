package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
)

func TestKindOf(t *testing.T) {
	cases := map[string]error{
		"cv.pdf":       nil,
		"CV.PDF":       nil,
		"resume.docx":  nil,
		"resume.doc":   ErrUnsupportedType,
		"notes.txt":    ErrUnsupportedType,
		"no-extension": ErrUnsupportedType,
	}
	for name, want := range cases {
		if _, err := KindOf(name); !errors.Is(err, want) {
			t.Fatalf("KindOf(%q) = %v, want %v", name, err, want)
		}
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXText(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Alex Morgan</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t xml:space="preserve">Go, SQL</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := DOCXText(buildDOCX(t, doc))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if text != "Alex Morgan\nSkills:\tGo, SQL\n" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractor_RejectsAndEmpty(t *testing.T) {
	ex := Extractor{}
	if _, err := ex.Extract(context.Background(), "cv.txt", []byte("hello")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	empty := buildDOCX(t, `<w:document xmlns:w="x"><w:body><w:p/></w:body></w:document>`)
	if _, err := ex.Extract(context.Background(), "cv.docx", empty); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}

	if _, err := ex.Extract(context.Background(), "cv.docx", []byte("not a zip")); err == nil {
		t.Fatalf("expected error for corrupt docx")
	}
}

func TestDecodeParsed(t *testing.T) {
	raw := "```json\n{\"info_dict\":{\"full_name\":\"Alex\",\"email\":\"a@example.com\"},\"job_dict\":{\"tech_stack\":[\"Go\"]}}\n```"
	p, err := DecodeParsed([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Name() != "Alex" || p.Email() != "a@example.com" {
		t.Fatalf("unexpected name/email %q %q", p.Name(), p.Email())
	}
	if p.NewKeysTracker.JobDict == nil || p.NewKeysTracker.InfoDict == nil {
		t.Fatalf("missing tracker lists must be normalized to empty")
	}

	if _, err := DecodeParsed([]byte("sorry, I cannot")); !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

type fakeModel struct {
	reply string
	err   error

	gotMsgs []llms.MessageContent
	gotOpts llms.CallOptions
}

func (m *fakeModel) GenerateContent(ctx context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.gotMsgs = msgs
	for _, opt := range options {
		opt(&m.gotOpts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLLMParser_Parse(t *testing.T) {
	m := &fakeModel{reply: `{"info_dict":{"name":"Sam"},"job_dict":{"tech_stack":["Go","Redis"]},"new_keys_tracker":{"info_dict":[],"job_dict":["tech_stack"]}}`}
	p := NewLLMParserWithModel(m, "", zerolog.Nop())

	parsed, err := p.Parse(context.Background(), "Sam\nGo, Redis")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if parsed.Name() != "Sam" || len(parsed.NewKeysTracker.JobDict) != 1 {
		t.Fatalf("unexpected parse %+v", parsed)
	}

	if len(m.gotMsgs) != 2 || m.gotMsgs[0].Role != llms.ChatMessageTypeSystem || m.gotMsgs[1].Role != llms.ChatMessageTypeHuman {
		t.Fatalf("expected system+human messages, got %+v", m.gotMsgs)
	}
	if !m.gotOpts.JSONMode || m.gotOpts.Temperature != 0 {
		t.Fatalf("expected JSON mode at temperature 0, got %+v", m.gotOpts)
	}
}

func TestLLMParser_Errors(t *testing.T) {
	var nilParser *LLMParser
	if _, err := nilParser.Parse(context.Background(), "x"); !errors.Is(err, ErrLLMNotConfigured) {
		t.Fatalf("expected ErrLLMNotConfigured, got %v", err)
	}

	p := NewLLMParserWithModel(&fakeModel{err: errors.New("rate limited")}, "prompt", zerolog.Nop())
	if _, err := p.Parse(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected wrapped model error, got %v", err)
	}

	p = NewLLMParserWithModel(&fakeModel{reply: "not json"}, "prompt", zerolog.Nop())
	if _, err := p.Parse(context.Background(), "x"); !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestScriptRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "resume.sh")
	body := `test -f "$1" || exit 3
echo '{"info_dict":{"full_name":"Script User"},"job_dict":{"skills":["go"]}}'`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	missing := ScriptRunner{Interpreter: "sh", Path: filepath.Join(dir, "nope.sh")}
	if missing.Available() {
		t.Fatalf("missing script must not be available")
	}
	if _, err := missing.Run(context.Background(), "cv.pdf", []byte("x")); !errors.Is(err, ErrScriptMissing) {
		t.Fatalf("expected ErrScriptMissing, got %v", err)
	}

	r := ScriptRunner{Interpreter: "sh", Path: script}
	p, err := r.Run(context.Background(), "cv.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Name() != "Script User" {
		t.Fatalf("unexpected parse %+v", p)
	}
}

func TestFixture(t *testing.T) {
	p, err := FixtureParser{}.Parse(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Name() == "" || len(p.JobDict) == 0 || len(p.NewKeysTracker.JobDict) == 0 {
		t.Fatalf("fixture incomplete: %+v", p)
	}
}
