package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/config"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	valid := config.GeminiConfig{APIKey: "key", Model: "gemini-2.0-flash", Temperature: 0.7}

	tests := []struct {
		name    string
		mutate  func(c *config.GeminiConfig)
		wantErr bool
	}{
		{"valid", func(c *config.GeminiConfig) {}, false},
		{"missing key", func(c *config.GeminiConfig) { c.APIKey = " " }, true},
		{"missing model", func(c *config.GeminiConfig) { c.Model = "" }, true},
		{"temperature too high", func(c *config.GeminiConfig) { c.Temperature = 2.5 }, true},
		{"negative timeout", func(c *config.GeminiConfig) { c.Timeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			err := validateConfig(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, generation.ErrInvalidConfig))
		})
	}
}

func TestNewStrategy(t *testing.T) {
	t.Parallel()

	_, err := NewStrategy(context.Background(), nil, config.GeminiConfig{Model: "gemini-2.0-flash"})
	assert.True(t, errors.Is(err, generation.ErrInvalidConfig))

	s, err := NewStrategy(context.Background(), nil, config.GeminiConfig{
		APIKey: "test-key",
		Model:  "gemini-2.0-flash",
	})
	require.NoError(t, err)
	assert.Equal(t, StrategyName, s.Name())
	assert.Equal(t, DefaultTimeout, s.timeout)
}

func TestCreatePrompt(t *testing.T) {
	t.Parallel()

	s, err := NewStrategy(context.Background(), nil, config.GeminiConfig{APIKey: "test-key", Model: "m"})
	require.NoError(t, err)

	prompt, err := s.createPrompt("Photosynthesis converts light into chemical energy.", 4)
	require.NoError(t, err)
	assert.Contains(t, prompt, "create 4 study questions")
	assert.Contains(t, prompt, "Photosynthesis converts light into chemical energy.")
	assert.Contains(t, prompt, `"cards"`)

	_, err = s.createPrompt("   ", 4)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestResponseText(t *testing.T) {
	t.Parallel()

	content := &genai.Content{Parts: []*genai.Part{{Text: `{"cards":`}, {Text: `[]}`}}}

	text, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"cards":[]}`, text)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: genai.FinishReasonSafety}},
	})
	assert.True(t, errors.Is(err, generation.ErrContentBlocked))

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.True(t, errors.Is(err, generation.ErrInvalidResponse))

	_, err = responseText(nil)
	assert.True(t, errors.Is(err, generation.ErrInvalidResponse))
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantCards []generation.Card
		wantErr   error
	}{
		{
			name: "json",
			text: `{"cards":[{"question":"What does ATP store?","answer":"Chemical energy for the cell.","difficulty":"Hard"}]}`,
			wantCards: []generation.Card{
				{Question: "What does ATP store?", Answer: "Chemical energy for the cell.", Difficulty: domain.DifficultyHard},
			},
		},
		{
			name: "fenced json",
			text: "```json\n{\"cards\":[{\"question\":\"What is mitosis?\",\"answer\":\"Cell division.\"}]}\n```",
			wantCards: []generation.Card{
				{Question: "What is mitosis?", Answer: "Cell division.", Difficulty: ""},
			},
		},
		{
			name: "q and a text",
			text: "Q: What does the mitochondria do\nA: It produces energy for the cell.",
			wantCards: []generation.Card{
				{Question: "What does the mitochondria do?", Answer: "It produces energy for the cell.", Difficulty: domain.DifficultyMedium},
			},
		},
		{
			name:    "empty card list",
			text:    `{"cards":[]}`,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "unusable text",
			text:    "I cannot help with that.",
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards, err := parseResponse(tt.text)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCards, cards)
		})
	}
}
