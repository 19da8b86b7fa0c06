package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"chatter around", "Sure! Here it is: {\"a\":{\"b\":2}} Hope that helps.", `{"a":{"b":2}}`},
		{"no braces", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDecodeStructuredSummary(t *testing.T) {
	got, err := DecodeStructuredSummary("```json\n{\"summary\":\"- **Launch** is on track\",\"keyPoints\":[\"launch\"],\"decisions\":[]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "- Launch is on track", got.Summary)
	assert.Equal(t, []string{"launch"}, got.KeyPoints)
}

func TestDecodeStructuredSummary_Malformed(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":        "The meeting went well.",
		"missing summary": `{"keyPoints":["a"]}`,
		"wrong type":      `{"summary":["a","b"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeStructuredSummary(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))

			var malformed *MalformedResponseError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, raw, malformed.Raw)
		})
	}
}

func TestDecodeInsights(t *testing.T) {
	got, err := DecodeInsights(`{"sentiment":"positive","keyTopics":["launch"],"decisions":["ship friday"]}`)
	require.NoError(t, err)
	assert.Equal(t, entities.SentimentPositive, got.Sentiment)
	assert.Equal(t, []string{"launch"}, got.KeyTopics)
	assert.Equal(t, []string{"ship friday"}, got.Decisions)

	got, err = DecodeInsights(`{"sentiment":"ecstatic","keyTopics":[],"decisions":[]}`)
	require.NoError(t, err)
	assert.Equal(t, entities.SentimentNeutral, got.Sentiment)

	_, err = DecodeInsights(`{"sentiment":"positive","keyTopics":["a"]}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStripMarkdown(t *testing.T) {
	in := "**Bold** and *italic* and _under_\r\n\r\n\r\n\r\nnext```go\ncode\n```"
	assert.Equal(t, "Bold and italic and under\n\nnext", StripMarkdown(in))
}

func TestParseActionItems(t *testing.T) {
	raw := "- **Ship** the release by Friday\n• Review docs by Monday\n\n  -   Call vendor by 5pm  \n"
	assert.Equal(t, []string{
		"Ship the release by Friday",
		"Review docs by Monday",
		"Call vendor by 5pm",
	}, ParseActionItems(raw))

	assert.Empty(t, ParseActionItems("   \n"))
}
