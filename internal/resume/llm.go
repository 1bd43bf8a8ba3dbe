package resume

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"swipehire/internal/config"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var ErrLLMNotConfigured = errors.New("resume LLM is not configured")

// maxResumeChars bounds the prompt size.
const maxResumeChars = 20000

const defaultSystemPrompt = `You convert resume text into JSON. Reply with a single JSON object and nothing else:
{
  "info_dict": {"full_name": string, "email": string, "phone": string, "location": string},
  "job_dict": {"college": string, "branch": string, "year_of_graduation": number,
               "experiences": [{"company": string, "position": string, "duration": string, "description": string}],
               "projects": [{"name": string, "duration": string, "description": string}],
               "tech_stack": [string]},
  "new_keys_tracker": {"info_dict": [string], "job_dict": [string]}
}
Put any other useful section under a new key in the right dict and list that key in new_keys_tracker.
Use null for anything missing. Do not invent facts.`

// LLMParser asks a chat model for the dictionaries in JSON mode.
type LLMParser struct {
	model        llms.Model
	systemPrompt string
	logger       zerolog.Logger
}

// NewLLMParser talks to an OpenAI-compatible endpoint. The system prompt is
// read from cfg.SystemPromptPath when that file exists.
func NewLLMParser(cfg config.ResumeConfig, logger zerolog.Logger) (*LLMParser, error) {
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		return nil, ErrLLMNotConfigured
	}
	model, err := openai.New(
		openai.WithToken(cfg.LLMAPIKey),
		openai.WithBaseURL(cfg.LLMBaseURL),
		openai.WithModel(cfg.LLMModel),
	)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}
	return NewLLMParserWithModel(model, loadSystemPrompt(cfg.SystemPromptPath), logger), nil
}

func NewLLMParserWithModel(model llms.Model, systemPrompt string, logger zerolog.Logger) *LLMParser {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &LLMParser{
		model:        model,
		systemPrompt: systemPrompt,
		logger:       logger.With().Str("component", "resume_llm").Logger(),
	}
}

func loadSystemPrompt(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(b)
}

func (p *LLMParser) Parse(ctx context.Context, text string) (Parsed, error) {
	if p == nil || p.model == nil {
		return Parsed{}, ErrLLMNotConfigured
	}
	if r := []rune(text); len(r) > maxResumeChars {
		text = string(r[:maxResumeChars])
	}

	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, p.systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}
	resp, err := p.model.GenerateContent(ctx, msgs, llms.WithTemperature(0), llms.WithJSONMode())
	if err != nil {
		return Parsed{}, fmt.Errorf("llm parsing: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return Parsed{}, ErrInvalidOutput
	}

	parsed, err := DecodeParsed([]byte(resp.Choices[0].Content))
	if err != nil {
		p.logger.Warn().Err(err).Int("chars", len(resp.Choices[0].Content)).Msg("unparseable model output")
		return Parsed{}, err
	}
	p.logger.Debug().
		Int("job_keys", len(parsed.JobDict)).
		Int("new_job_keys", len(parsed.NewKeysTracker.JobDict)).
		Msg("resume parsed")
	return parsed, nil
}
