package memories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository/memory"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/search"
)

func TestReindexAndSearch(t *testing.T) {
	index, err := search.NewIndex("")
	require.NoError(t, err)
	defer index.Close()

	ctx := context.Background()
	meetings := memory.NewMeetingRepository()
	transcripts := memory.NewTranscriptRepository()
	summaries := memory.NewSummaryRepository()
	svc := NewService(index, meetings, transcripts, summaries, 0, nil)

	owner := uuid.New()
	other := uuid.New()
	_, err = meetings.Create(ctx, entities.NewMeeting("evt-budget", owner, "Budget review"))
	require.NoError(t, err)
	_, err = meetings.Create(ctx, entities.NewMeeting("evt-other", other, "Budget for someone else"))
	require.NoError(t, err)

	doc := entities.NewTranscript("evt-budget")
	doc.Segments = append(doc.Segments, entities.NewTranscriptSegment("We cut the marketing spend", time.Now()))
	require.NoError(t, transcripts.Save(ctx, doc))
	_, err = summaries.SaveIfInvalid(ctx, entities.NewSummary("evt-budget", "- Marketing spend reduced", nil, entities.Insights{}, time.Now()))
	require.NoError(t, err)

	require.NoError(t, svc.Reindex(ctx, "evt-budget"))
	require.NoError(t, svc.Reindex(ctx, "evt-other"))
	require.NoError(t, svc.Reindex(ctx, "evt-missing"))

	found, err := svc.Search(ctx, owner, "marketing")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "evt-budget", found[0].Meeting.ID)
	assert.Equal(t, "- Marketing spend reduced", found[0].Summary)

	found, err = svc.Search(ctx, owner, "budget")
	require.NoError(t, err)
	require.Len(t, found, 1, "other users' meetings are never returned")

	found, err = svc.Search(ctx, owner, "  ")
	require.NoError(t, err)
	assert.Empty(t, found)
}
