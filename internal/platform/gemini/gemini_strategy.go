package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/config"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"google.golang.org/genai"
)

// StrategyName identifies the Gemini strategy in logs and generation results.
const StrategyName = "gemini"

// DefaultTimeout bounds a single Gemini call when the configuration sets none.
const DefaultTimeout = 30 * time.Second

// promptExcerpt is the number of note characters included in the prompt.
const promptExcerpt = 300

const defaultPrompt = `Based on this text, create {{.Count}} study questions with answers:

{{.Content}}

Respond with JSON only, in this shape:
{"cards": [{"question": "...", "answer": "...", "difficulty": "easy|medium|hard"}]}
Each question must end with a question mark. Answers must come from the text.`

// Strategy implements generation.Strategy using the Gemini API.
type Strategy struct {
	// logger is used for structured logging
	logger *slog.Logger

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	temperature float32
	timeout     time.Duration

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template
}

// Ensure Strategy implements generation.Strategy
var _ generation.Strategy = (*Strategy)(nil)

// NewStrategy creates a Gemini strategy.
//
// Parameters:
//   - ctx: Context for client initialization
//   - log: A structured logger for operation logging
//   - cfg: Gemini configuration containing API key, model name and call settings
//
// Returns:
//   - A ready Strategy, or an error wrapping generation.ErrInvalidConfig
func NewStrategy(ctx context.Context, log *slog.Logger, cfg config.GeminiConfig) (*Strategy, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	promptTemplate, err := template.New("gemini_flashcards").Parse(defaultPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Strategy{
		logger:         log.With(slog.String("component", "gemini_strategy")),
		client:         client,
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		timeout:        timeout,
		promptTemplate: promptTemplate,
	}, nil
}

// Name implements generation.Strategy.
func (s *Strategy) Name() string { return StrategyName }

// Attempt implements generation.Strategy. It makes exactly one API call;
// retrying is left to the cascade moving on to the next strategy.
func (s *Strategy) Attempt(ctx context.Context, content string, count int) ([]generation.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	prompt, err := s.createPrompt(content, count)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	temperature := s.temperature
	resp, err := s.client.Models.GenerateContent(callCtx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrBackendUnavailable, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	cards, err := parseResponse(text)
	if err != nil {
		return nil, err
	}

	log.Debug("gemini response parsed",
		slog.String("model", s.model),
		slog.Int("candidates", len(cards)))
	return cards, nil
}

// createPrompt renders the prompt template for the first promptExcerpt
// characters of content.
func (s *Strategy) createPrompt(content string, count int) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	var buf bytes.Buffer
	data := promptData{Count: count, Content: generation.Excerpt(content, promptExcerpt)}
	if err := s.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return text.String(), nil
}

// parseResponse converts the model output into candidates. JSON following
// ResponseSchema is preferred; anything else goes through the Q:/A: parser.
func parseResponse(text string) ([]generation.Card, error) {
	var schema ResponseSchema
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &schema); err == nil {
		cards := make([]generation.Card, 0, len(schema.Cards))
		for _, c := range schema.Cards {
			cards = append(cards, generation.Card{
				Question:   c.Question,
				Answer:     c.Answer,
				Difficulty: domain.Difficulty(strings.ToLower(strings.TrimSpace(c.Difficulty))),
			})
		}
		if len(cards) == 0 {
			return nil, fmt.Errorf("%w: no cards in response", generation.ErrInvalidResponse)
		}
		return cards, nil
	}

	cards := generation.ParseQA(text)
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: response is neither card JSON nor Q:/A: text", generation.ErrInvalidResponse)
	}
	return cards, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some models
// add even when asked for raw JSON.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
