package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"
	"github.com/johnquangdev/meeting-copilot/pkg/config"
	"go.uber.org/zap"
)

// AssemblyAITranscriber uploads each chunk and waits for the finished transcript
type AssemblyAITranscriber struct {
	client       *aai.Client
	languageCode string
	logger       *zap.Logger
	newBackOff   func() backoff.BackOff
}

// NewAssemblyAITranscriber creates a transcriber on the official SDK client.
// opts are applied after the API key.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig, logger *zap.Logger, opts ...aai.ClientOption) *AssemblyAITranscriber {
	opts = append([]aai.ClientOption{aai.WithAPIKey(cfg.APIKey)}, opts...)
	return &AssemblyAITranscriber{
		client:       aai.NewClientWithOptions(opts...),
		languageCode: cfg.LanguageCode,
		logger:       logger,
		newBackOff:   defaultUploadBackOff,
	}
}

func defaultUploadBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	bo.MaxInterval = 10 * time.Second
	return bo
}

// Transcribe decodes the chunk, uploads it and returns the transcript text
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioBase64, mimeType string) (string, error) {
	audio, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode audio chunk: %w", err)
	}
	if len(audio) == 0 {
		return "", nil
	}

	var uploadURL string
	upload := func() error {
		u, err := t.client.Upload(ctx, bytes.NewReader(audio))
		if err != nil {
			return fmt.Errorf("failed to upload to AssemblyAI: %w", err)
		}
		uploadURL = u
		return nil
	}
	notify := func(err error, wait time.Duration) {
		if t.logger != nil {
			t.logger.Warn("🔄 Retrying AssemblyAI upload",
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}
	}
	if err := backoff.RetryNotify(upload, backoff.WithContext(t.newBackOff(), ctx), notify); err != nil {
		return "", err
	}

	params := &aai.TranscriptOptionalParams{}
	if t.languageCode != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(t.languageCode)
	}

	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe with AssemblyAI: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", fmt.Errorf("assemblyai transcription failed: %s", msg)
	}
	if transcript.Text == nil {
		return "", nil
	}
	return strings.TrimSpace(*transcript.Text), nil
}
