package ai

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// TranscriptionPrompt is the instruction sent alongside each audio chunk
const TranscriptionPrompt = "You are a speech-to-text transcription service. Transcribe the following audio exactly as spoken. If there is no speech, return nothing. Do not add any commentary or explanations."

var (
	leadInPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Here's.*?:`),
		regexp.MustCompile(`(?i)^The transcription is:`),
		regexp.MustCompile(`(?i)^The audio says:`),
	}
	refusalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^I'm unable to transcribe.*$`),
		regexp.MustCompile(`(?im)^I don't have access.*$`),
		regexp.MustCompile(`(?im)^I need the audio.*$`),
	}
)

// audioGenerator is the part of GeminiClient the transcriber needs
type audioGenerator interface {
	GenerateWithAudio(ctx context.Context, prompt, audioBase64, mimeType string) (string, error)
}

// GeminiTranscriber transcribes chunks through generateContent with inline audio
type GeminiTranscriber struct {
	client audioGenerator
	logger *zap.Logger
}

// NewGeminiTranscriber wraps a Gemini client as a Transcriber
func NewGeminiTranscriber(client audioGenerator, logger *zap.Logger) *GeminiTranscriber {
	return &GeminiTranscriber{client: client, logger: logger}
}

// Transcribe returns the cleaned text for one chunk.
// Quota and transient failures yield an empty string; a rejected chunk yields ErrAudioRejected.
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioBase64, mimeType string) (string, error) {
	text, err := t.client.GenerateWithAudio(ctx, TranscriptionPrompt, audioBase64, mimeType)
	if err != nil {
		var apiErr *APIError
		switch {
		case IsQuotaError(err):
			if t.logger != nil {
				t.logger.Warn("⚠️ Transcription quota exceeded, chunk dropped", zap.Error(err))
			}
			return "", nil
		case errors.As(err, &apiErr) && apiErr.StatusCode == 400:
			return "", ErrAudioRejected
		default:
			if t.logger != nil {
				t.logger.Warn("⚠️ Transcription call failed, chunk dropped", zap.Error(err))
			}
			return "", nil
		}
	}
	return CleanTranscription(text), nil
}

// CleanTranscription strips model lead-ins and refusals from a transcription reply
func CleanTranscription(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(strings.ToLower(text), "unable to transcribe") {
		return ""
	}
	for _, re := range leadInPatterns {
		text = strings.TrimSpace(re.ReplaceAllString(text, ""))
	}
	for _, re := range refusalPatterns {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
