package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-copilot/pkg/ai"
)

var (
	structuredOptions = pkgai.GenerateOptions{Temperature: 0.2, TopP: 0.9, TopK: 40}
	insightsOptions   = pkgai.GenerateOptions{Temperature: 0.1, TopP: 0.8, TopK: 40}
	plainOptions      = pkgai.GenerateOptions{}
)

func summaryPrompt(transcript string) string {
	return `Return ONLY a JSON object in the following format:
{
  "summary": "A detailed bullet-point summary of the meeting (10-12 points)",
  "keyPoints": ["Main discussion topics as phrases"],
  "decisions": ["Any decisions made during the meeting"]
}

The summary must cover all key updates, issues discussed, solutions proposed, deadlines mentioned, and responsibilities assigned.

Do NOT include any explanation before or after the JSON object. Return valid JSON only.

Transcript:
` + transcript
}

func fallbackSummaryPrompt(transcript string) string {
	return `Provide a detailed bullet-point summary (10-12 points) of the following meeting transcript.
Include key updates, bugs discussed, fixes proposed, deadlines, and decisions. Do not add any explanation.

Transcript:
` + transcript
}

func actionItemsPrompt(transcript string) string {
	return `Extract all action items from this meeting transcript.
Format each action item as a single bullet point like this:
- [Task] by [Due Date]

If no due date is mentioned, skip it.

Respond with plain text, one bullet point per line. Do not include markdown formatting like **bold** or extra explanation.

Transcript:
` + transcript
}

func insightsPrompt(transcript string) string {
	return `Analyze this meeting transcript and return a JSON object with the following structure:
{
  "sentiment": "positive|neutral|negative",
  "keyTopics": ["topic1", "topic2", ...],
  "decisions": ["decision1", "decision2", ...]
}

Transcript:
` + transcript + `

Return ONLY the JSON object, no other text.`
}

func chatPrompt(segments []entities.TranscriptSegment, question string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant for a meeting transcript.\n\nTranscript:\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "[%s] %s\n", seg.Timestamp.Format(time.Kitchen), seg.Text)
	}
	fmt.Fprintf(&b, "\nUser Question: %s\n\nGive a helpful answer based only on the transcript. If it's not present, say so.", question)
	return b.String()
}

func cleanPrompt(text string) string {
	return fmt.Sprintf(`Clean up and summarize this segment of a meeting transcript.
Preserve natural flow, fix grammar, and remove any disfluencies. Don't fabricate. Just clean and present clearly:
---
%s
---`, text)
}
