package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-copilot/pkg/config"
)

// GeminiClient calls the generateContent REST endpoint
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a Gemini client from config
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// GenerateContentRequest is the generateContent request body
type GenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

// GenerateContentResponse is the subset of the reply we read
type GenerateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Text joins the text parts of the first candidate
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Generate sends a text-only prompt
func (g *GeminiClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := GenerateContentRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: toGenerationConfig(opts),
	}
	return g.generate(ctx, req)
}

// GenerateWithAudio sends a prompt followed by an inline base64 audio part
func (g *GeminiClient) GenerateWithAudio(ctx context.Context, prompt, audioBase64, mimeType string) (string, error) {
	req := GenerateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{MimeType: mimeType, Data: audioBase64}},
			},
		}},
	}
	return g.generate(ctx, req)
}

func (g *GeminiClient) generate(ctx context.Context, body GenerateContentRequest) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var gr GenerateContentResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &gr); err != nil && resp.StatusCode < 400 {
			return "", fmt.Errorf("failed to decode gemini response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		msg := http.StatusText(resp.StatusCode)
		if gr.Error != nil && gr.Error.Message != "" {
			msg = gr.Error.Message
		}
		return "", &APIError{Service: "gemini", StatusCode: resp.StatusCode, Message: msg}
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return gr.Text(), nil
}

func toGenerationConfig(opts GenerateOptions) *geminiGenerationConfig {
	if opts == (GenerateOptions{}) {
		return nil
	}
	gc := &geminiGenerationConfig{}
	if opts.Temperature > 0 {
		gc.Temperature = &opts.Temperature
	}
	if opts.TopP > 0 {
		gc.TopP = &opts.TopP
	}
	if opts.TopK > 0 {
		gc.TopK = &opts.TopK
	}
	if opts.MaxTokens > 0 {
		gc.MaxOutputTokens = &opts.MaxTokens
	}
	return gc
}
