package presenter

import (
	"github.com/johnquangdev/meeting-copilot/internal/adapter/dto"
	meetingDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/calendar"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/memories"
)

// ToEventResponses converts calendar events, never returning nil
func ToEventResponses(events []calendar.Event) []meetingDTO.EventResponse {
	out := make([]meetingDTO.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, meetingDTO.EventResponse{
			ID:          e.ID,
			Title:       e.Summary,
			Description: e.Description,
			MeetLink:    e.VideoLink(),
			StartTime:   e.Start.Time(),
			EndTime:     e.End.Time(),
		})
	}
	return out
}

// ToSummaryResponse converts a stored summary. A missing summary becomes
// the pending placeholder.
func ToSummaryResponse(meetingID string, s *entities.Summary) *dto.MeetingSummaryResponse {
	if s == nil {
		return &dto.MeetingSummaryResponse{
			MeetingID:   meetingID,
			Summary:     entities.PendingSummaryMessage,
			ActionItems: []string{},
			Insights: entities.Insights{
				Sentiment: entities.SentimentNeutral,
				KeyTopics: []string{},
				Decisions: []string{},
			},
			Pending: true,
		}
	}

	actionItems := []string(s.ActionItems)
	if actionItems == nil {
		actionItems = []string{}
	}
	updated := s.LastUpdated
	return &dto.MeetingSummaryResponse{
		MeetingID:   s.MeetingID,
		SummaryID:   s.SummaryID,
		Summary:     s.Summary,
		ActionItems: actionItems,
		Insights:    s.Insights.Data(),
		LastUpdated: &updated,
	}
}

// ToTranscriptResponse converts a stored transcript
func ToTranscriptResponse(t *entities.Transcript) *meetingDTO.TranscriptResponse {
	segments := []entities.TranscriptSegment(t.Segments)
	if segments == nil {
		segments = []entities.TranscriptSegment{}
	}
	resp := &meetingDTO.TranscriptResponse{
		MeetingID:  t.MeetingID,
		Segments:   segments,
		IsComplete: t.IsComplete,
	}
	if !t.LastUpdated.IsZero() {
		updated := t.LastUpdated
		resp.LastUpdated = &updated
	}
	return resp
}

// ToMemoryResponses flattens search results
func ToMemoryResponses(results []memories.Memory) []dto.MemoryResponse {
	out := make([]dto.MemoryResponse, 0, len(results))
	for _, r := range results {
		if r.Meeting == nil {
			continue
		}
		out = append(out, dto.MemoryResponse{
			MeetingID: r.Meeting.ID,
			Title:     r.Meeting.Title,
			Status:    string(r.Meeting.Status),
			StartTime: r.Meeting.StartTime,
			Summary:   r.Summary,
			Score:     r.Score,
		})
	}
	return out
}
