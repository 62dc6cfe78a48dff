package inference

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/generation"
)

// Strategy kinds accepted in endpoint configuration.
const (
	KindSummarize  = "summarize"
	KindExtractive = "extractive"
	KindInstruct   = "instruct"
	KindComplete   = "complete"
)

// Input excerpt sizes, in characters, sent to each kind of endpoint.
const (
	summarizeExcerpt  = 500
	extractiveExcerpt = 400
	instructExcerpt   = 300
	completeExcerpt   = 400
)

// ExtractiveQuestionTimeout bounds each question sent to an extractive endpoint.
const ExtractiveQuestionTimeout = 15 * time.Second

const (
	questionSummaryTopic = "What is the main topic of these notes?"
	questionSummaryPoint = "What key point is mentioned about the topic?"

	// summaryPointMinLength is the length a summary sentence must exceed to become a card.
	summaryPointMinLength = 20
	// extractiveAnswerMinLength is the length an extracted answer must exceed.
	extractiveAnswerMinLength = 10
)

// extractiveQuestions are asked, in order, of extractive endpoints.
var extractiveQuestions = []string{
	"What is the main topic discussed?",
	"What are the key concepts mentioned?",
	"What should someone remember from this?",
	"How does this process work?",
	"What are the important details?",
	"What is the significance of this information?",
	"What are the main points covered?",
}

var (
	instructPrompt = template.Must(template.New("instruct").Parse(
		"Based on this text, create {{.Count}} study questions with answers:\n\n" +
			"{{.Content}}\n\n" +
			"Format your response as:\n" +
			"Q: [question]\n" +
			"A: [answer]\n" +
			"Q: [question]\n" +
			"A: [answer]"))

	completePrompt = template.Must(template.New("complete").Parse(
		"Create {{.Count}} study questions from this text:\n\n{{.Content}}\n\nQ:"))
)

type promptData struct {
	Count   int
	Content string
}

func renderPrompt(tmpl *template.Template, count int, content string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Count: count, Content: content}); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

type summaryText struct {
	SummaryText string `json:"summary_text"`
}

type extractiveRequest struct {
	Inputs extractiveInputs `json:"inputs"`
}

type extractiveInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type extractiveAnswer struct {
	Answer string `json:"answer"`
}

type textRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
}

// Summarize asks a summarization endpoint for a summary of the notes and
// turns it into one overview card plus one card per summary sentence.
type Summarize struct {
	endpoint
	name string
}

// Name implements generation.Strategy.
func (s *Summarize) Name() string { return s.name }

// Attempt implements generation.Strategy.
func (s *Summarize) Attempt(ctx context.Context, content string, count int) ([]generation.Card, error) {
	req := textRequest{
		Inputs: generation.Excerpt(content, summarizeExcerpt),
		Parameters: map[string]any{
			"max_length":  150,
			"min_length":  30,
			"do_sample":   true,
			"temperature": 0.7,
		},
	}

	var resp []summaryText
	if err := s.postJSON(ctx, 0, req, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].SummaryText) == "" {
		return nil, fmt.Errorf("%w: no summary_text in response", generation.ErrInvalidResponse)
	}

	return cardsFromSummary(resp[0].SummaryText, count), nil
}

func cardsFromSummary(summary string, count int) []generation.Card {
	summary = strings.TrimSpace(summary)
	cards := []generation.Card{{
		Question:   questionSummaryTopic,
		Answer:     summary,
		Difficulty: domain.DifficultyEasy,
	}}
	for _, sentence := range generation.Sentences(summary, summaryPointMinLength) {
		if len(cards) >= count {
			break
		}
		cards = append(cards, generation.Card{
			Question:   questionSummaryPoint,
			Answer:     sentence,
			Difficulty: domain.DifficultyMedium,
		})
	}
	return cards
}

// Extractive asks an extractive question-answering endpoint a fixed list of
// generic questions about the notes, one request per question.
type Extractive struct {
	endpoint
	name            string
	questionTimeout time.Duration
}

// Name implements generation.Strategy.
func (s *Extractive) Name() string { return s.name }

// Attempt implements generation.Strategy. Individual question failures are
// skipped; the attempt fails when fewer than generation.MinCards answers
// survive.
func (s *Extractive) Attempt(ctx context.Context, content string, count int) ([]generation.Card, error) {
	questions := extractiveQuestions
	if count < len(questions) {
		questions = questions[:count]
	}
	excerpt := generation.Excerpt(content, extractiveExcerpt)

	var (
		cards   []generation.Card
		lastErr error
	)
	for _, question := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req := extractiveRequest{Inputs: extractiveInputs{Question: question, Context: excerpt}}
		var resp extractiveAnswer
		if err := s.postJSON(ctx, s.questionTimeout, req, &resp); err != nil {
			lastErr = err
			continue
		}

		answer := strings.TrimSpace(resp.Answer)
		if utf8.RuneCountInString(answer) <= extractiveAnswerMinLength {
			continue
		}
		cards = append(cards, generation.Card{
			Question:   question,
			Answer:     answer,
			Difficulty: domain.DifficultyMedium,
		})
	}

	if len(cards) < generation.MinCards {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %d usable answers, last error: %w",
				generation.ErrTooFewCards, len(cards), lastErr)
		}
		return nil, fmt.Errorf("%w: %d usable answers", generation.ErrTooFewCards, len(cards))
	}
	return cards, nil
}

// Instruct prompts an instruction-following endpoint for Q:/A: pairs.
type Instruct struct {
	endpoint
	name string
}

// Name implements generation.Strategy.
func (s *Instruct) Name() string { return s.name }

// Attempt implements generation.Strategy.
func (s *Instruct) Attempt(ctx context.Context, content string, count int) ([]generation.Card, error) {
	prompt, err := renderPrompt(instructPrompt, count, generation.Excerpt(content, instructExcerpt))
	if err != nil {
		return nil, err
	}

	req := textRequest{
		Inputs: prompt,
		Parameters: map[string]any{
			"max_new_tokens": 300,
			"temperature":    0.7,
			"do_sample":      true,
		},
	}

	text, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return generation.ParseQA(text), nil
}

// Complete prompts a free-completion endpoint with text ending in "Q:" and
// parses whatever it continues with.
type Complete struct {
	endpoint
	name string
}

// Name implements generation.Strategy.
func (s *Complete) Name() string { return s.name }

// Attempt implements generation.Strategy. Q:/A: pairs are preferred; otherwise
// question sentences in the output are answered from the notes.
func (s *Complete) Attempt(ctx context.Context, content string, count int) ([]generation.Card, error) {
	prompt, err := renderPrompt(completePrompt, count, generation.Excerpt(content, completeExcerpt))
	if err != nil {
		return nil, err
	}

	req := textRequest{
		Inputs: prompt,
		Parameters: map[string]any{
			"max_new_tokens":   200,
			"temperature":      0.8,
			"return_full_text": false,
			"do_sample":        true,
		},
	}

	text, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if cards := generation.ParseQA(text); len(cards) > 0 {
		return cards, nil
	}
	return generation.ExtractQuestions(text, content, count), nil
}

func (e endpoint) generate(ctx context.Context, req textRequest) (string, error) {
	var resp []generatedText
	if err := e.postJSON(ctx, 0, req, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].GeneratedText) == "" {
		return "", fmt.Errorf("%w: no generated_text in response", generation.ErrInvalidResponse)
	}
	return resp[0].GeneratedText, nil
}
