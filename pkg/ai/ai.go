package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-copilot/pkg/config"
	"go.uber.org/zap"
)

// ErrAudioRejected is returned when the model refuses a chunk outright
var ErrAudioRejected = errors.New("Audio too long or in unsupported format.")

// ErrMissingAPIKey is returned when a provider is selected without credentials
var ErrMissingAPIKey = errors.New("missing api key")

// GenerateOptions tunes a single text generation call
type GenerateOptions struct {
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

// TextGenerator sends a prompt to a hosted model and returns the reply text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Transcriber turns one base64 encoded audio chunk into text.
// An empty string with a nil error means the chunk had nothing to transcribe.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64, mimeType string) (string, error)
}

// APIError is a non-2xx reply from a provider
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
}

// IsQuotaError reports whether the provider rejected the call for rate or quota reasons
func IsQuotaError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "quota")
}

// NewTextGenerator builds the generator selected by AI_PROVIDER
func NewTextGenerator(cfg *config.AIConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "groq":
		if cfg.Groq.APIKey == "" {
			return nil, fmt.Errorf("groq: %w", ErrMissingAPIKey)
		}
		return NewGroqClient(&cfg.Groq), nil
	case "", "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
		}
		return NewGeminiClient(&cfg.Gemini), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// NewTranscriber builds the transcriber selected by TRANSCRIPTION_PROVIDER
func NewTranscriber(cfg *config.AIConfig, logger *zap.Logger) (Transcriber, error) {
	switch cfg.TranscriptionProvider {
	case "assemblyai":
		if cfg.AssemblyAI.APIKey == "" {
			return nil, fmt.Errorf("assemblyai: %w", ErrMissingAPIKey)
		}
		return NewAssemblyAITranscriber(&cfg.AssemblyAI, logger), nil
	case "", "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
		}
		return NewGeminiTranscriber(NewGeminiClient(&cfg.Gemini), logger), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.TranscriptionProvider)
	}
}
