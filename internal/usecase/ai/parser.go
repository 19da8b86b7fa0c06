package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// ErrMalformedResponse matches every MalformedResponseError
var ErrMalformedResponse = errors.New("malformed model response")

// MalformedResponseError is returned when a model reply does not match the expected schema
type MalformedResponseError struct {
	Raw    string
	Reason error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedResponse.Error(), e.Reason)
}

// Is lets errors.Is match ErrMalformedResponse
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Reason
}

// StructuredSummary is the JSON the summary prompt asks for
type StructuredSummary struct {
	Summary   string   `json:"summary" validate:"required"`
	KeyPoints []string `json:"keyPoints"`
	Decisions []string `json:"decisions"`
}

type insightsPayload struct {
	Sentiment string   `json:"sentiment" validate:"required"`
	KeyTopics []string `json:"keyTopics" validate:"required"`
	Decisions []string `json:"decisions" validate:"required"`
}

var schema = validator.New()

var (
	codeFence     = regexp.MustCompile("```(?:json)?")
	codeBlock     = regexp.MustCompile("(?s)```.*?```")
	boldMarkup    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkup  = regexp.MustCompile(`\*(.*?)\*`)
	underscoreEmp = regexp.MustCompile(`_(.*?)_`)
	lineBreaks    = regexp.MustCompile(`\r\n|\r`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
	bulletPrefix  = regexp.MustCompile(`^[-•]\s*`)
)

// ExtractJSON strips code fences and anything outside the outermost braces
func ExtractJSON(content string) string {
	content = codeFence.ReplaceAllString(content, "")
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(content[start : end+1])
}

// DecodeStructuredSummary decodes and validates a summary reply
func DecodeStructuredSummary(raw string) (StructuredSummary, error) {
	var out StructuredSummary
	if err := decodeStrict(raw, &out); err != nil {
		return StructuredSummary{}, err
	}
	out.Summary = StripMarkdown(out.Summary)
	if out.Summary == "" {
		return StructuredSummary{}, &MalformedResponseError{Raw: raw, Reason: errors.New("summary is empty after cleanup")}
	}
	return out, nil
}

// DecodeInsights decodes and validates an insights reply.
// An unknown sentiment is coerced to neutral.
func DecodeInsights(raw string) (entities.Insights, error) {
	var p insightsPayload
	if err := decodeStrict(raw, &p); err != nil {
		return entities.Insights{}, err
	}
	sentiment := entities.Sentiment(p.Sentiment)
	if !sentiment.IsValid() {
		sentiment = entities.SentimentNeutral
	}
	return entities.Insights{
		Sentiment: sentiment,
		KeyTopics: p.KeyTopics,
		Decisions: p.Decisions,
	}, nil
}

func decodeStrict(raw string, v interface{}) error {
	cleaned := ExtractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return &MalformedResponseError{Raw: raw, Reason: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := schema.Struct(v); err != nil {
		return &MalformedResponseError{Raw: raw, Reason: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// StripMarkdown removes emphasis and code blocks and normalizes blank lines
func StripMarkdown(text string) string {
	text = codeBlock.ReplaceAllString(text, "")
	text = stripEmphasis(text)
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func stripEmphasis(text string) string {
	text = boldMarkup.ReplaceAllString(text, "$1")
	text = italicMarkup.ReplaceAllString(text, "$1")
	return underscoreEmp.ReplaceAllString(text, "$1")
}

// ParseActionItems turns a bullet list reply into one item per line
func ParseActionItems(raw string) []string {
	raw = boldMarkup.ReplaceAllString(strings.TrimSpace(raw), "$1")
	raw = italicMarkup.ReplaceAllString(raw, "$1")

	items := make([]string, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
