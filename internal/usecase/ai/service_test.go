package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository/memory"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/cache"
	pkgai "github.com/johnquangdev/meeting-copilot/pkg/ai"
	"github.com/johnquangdev/meeting-copilot/pkg/jobcontext"
)

const (
	prefixSummary  = "Return ONLY a JSON object"
	prefixFallback = "Provide a detailed bullet-point summary"
	prefixActions  = "Extract all action items"
	prefixInsights = "Analyze this meeting transcript"
	prefixChat     = "You are an AI assistant"
	prefixClean    = "Clean up and summarize"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts pkgai.GenerateOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) onPrompt(prefix, reply string, err error) *mock.Call {
	return m.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, prefix)
	}), mock.Anything).Return(reply, err)
}

type fakeIndexer struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeIndexer) Reindex(_ context.Context, meetingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, meetingID)
	return nil
}

type fixture struct {
	gen         *mockGenerator
	transcripts *memory.TranscriptRepository
	summaries   *memory.SummaryRepository
	chats       *memory.ChatRepository
	locker      *cache.Locker
	indexer     *fakeIndexer
	svc         Service
}

func newFixture(t *testing.T, enabled bool) *fixture {
	t.Helper()
	store := cache.NewMemoryStore(clock.New())
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		gen:         &mockGenerator{},
		transcripts: memory.NewTranscriptRepository(),
		summaries:   memory.NewSummaryRepository(),
		chats:       memory.NewChatRepository(),
		locker:      cache.NewLocker(store),
		indexer:     &fakeIndexer{},
	}
	var gen pkgai.TextGenerator
	if enabled {
		gen = f.gen
	}
	f.svc = NewAIService(gen, f.transcripts, f.summaries, f.chats, f.locker, nil, nil)
	f.svc.SetIndexer(f.indexer)
	return f
}

func (f *fixture) seedTranscript(t *testing.T, meetingID string, texts ...string) {
	t.Helper()
	doc := entities.NewTranscript(meetingID)
	at := time.Date(2026, 3, 2, 15, 4, 0, 0, time.UTC)
	for i, text := range texts {
		doc.Segments = append(doc.Segments, entities.NewTranscriptSegment(text, at.Add(time.Duration(i)*6*time.Second)))
	}
	require.NoError(t, f.transcripts.Save(context.Background(), doc))
}

func TestGenerateSummaryWithInsights_Generates(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "We agreed to launch on Friday.", "Ana will write the docs.")

	f.gen.onPrompt(prefixSummary, "```json\n{\"summary\":\"- **Launch** on Friday\",\"keyPoints\":[\"launch\"],\"decisions\":[\"launch friday\"]}\n```", nil).Once()
	f.gen.onPrompt(prefixActions, "- Write docs by Thursday\n- Launch by Friday", nil).Once()
	f.gen.onPrompt(prefixInsights, `{"sentiment":"positive","keyTopics":["launch"],"decisions":["launch friday"]}`, nil).Once()

	outcome, err := f.svc.GenerateSummaryWithInsights(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, outcome)

	summary, err := f.svc.GetSummary(context.Background(), "meet-123")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "- Launch on Friday", summary.Summary)
	assert.True(t, strings.HasPrefix(summary.SummaryID, "meet-123-"))
	assert.Equal(t, []string{"Write docs by Thursday", "Launch by Friday"}, []string(summary.ActionItems))
	assert.Equal(t, entities.SentimentPositive, summary.Insights.Data().Sentiment)
	assert.Equal(t, []string{"meet-123"}, f.indexer.ids)
	f.gen.AssertExpectations(t)
}

func TestGenerateSummaryWithInsights_Idempotent(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "Status update.")

	f.gen.onPrompt(prefixSummary, `{"summary":"Status was shared."}`, nil).Once()
	f.gen.onPrompt(prefixActions, "", nil).Once()
	f.gen.onPrompt(prefixInsights, `{"sentiment":"neutral","keyTopics":[],"decisions":[]}`, nil).Once()

	ctx := context.Background()
	first, err := f.svc.GenerateSummaryWithInsights(ctx, "meet-123")
	require.NoError(t, err)
	second, err := f.svc.GenerateSummaryWithInsights(ctx, "meet-123")
	require.NoError(t, err)

	assert.Equal(t, OutcomeGenerated, first)
	assert.Equal(t, OutcomeExists, second)
	assert.Equal(t, 1, f.summaries.Saves())
	f.gen.AssertNumberOfCalls(t, "Generate", 3)
}

func TestGenerateSummaryWithInsights_EmptyTranscript(t *testing.T) {
	f := newFixture(t, true)

	outcome, err := f.svc.GenerateSummaryWithInsights(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmptyTranscript, outcome)

	f.seedTranscript(t, "meet-123", "  ", "")
	outcome, err = f.svc.GenerateSummaryWithInsights(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmptyTranscript, outcome)

	summary, err := f.svc.GetSummary(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Nil(t, summary)
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateSummaryWithInsights_MalformedFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		err      error
		want     string
	}{
		{"fallback text", "- **Budget** approved\n- Hiring paused", nil, "- Budget approved\n- Hiring paused"},
		{"fallback empty", "   ", nil, EmptyFallbackSummary},
		{"fallback fails", "", &pkgai.APIError{Service: "gemini", StatusCode: 400, Message: "bad"}, FailedSummary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.seedTranscript(t, "meet-123", "Budget talk.")

			f.gen.onPrompt(prefixSummary, "Here is your summary: the budget was approved.", nil).Once()
			f.gen.onPrompt(prefixFallback, tt.fallback, tt.err).Once()
			f.gen.onPrompt(prefixActions, "", assert.AnError).Once()
			f.gen.onPrompt(prefixInsights, "not json", nil).Once()

			outcome, err := f.svc.GenerateSummaryWithInsights(context.Background(), "meet-123")
			require.NoError(t, err)
			assert.Equal(t, OutcomeGenerated, outcome)

			summary, err := f.svc.GetSummary(context.Background(), "meet-123")
			require.NoError(t, err)
			assert.Equal(t, tt.want, summary.Summary)
			assert.Equal(t, []string{FailedActionItems}, []string(summary.ActionItems))

			insights := summary.Insights.Data()
			assert.Equal(t, entities.SentimentNeutral, insights.Sentiment)
			assert.Equal(t, []string{CouldNotAnalyze}, insights.KeyTopics)
			assert.Equal(t, []string{CouldNotAnalyze}, insights.Decisions)
		})
	}
}

func TestGenerateSummaryWithInsights_RejectsPleaseProvide(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "hello")

	f.gen.onPrompt(prefixSummary, `{"summary":"Please provide the full transcript."}`, nil).Once()
	f.gen.onPrompt(prefixActions, "", nil).Once()
	f.gen.onPrompt(prefixInsights, `{"sentiment":"neutral","keyTopics":[],"decisions":[]}`, nil).Once()

	outcome, err := f.svc.GenerateSummaryWithInsights(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, 0, f.summaries.Saves())
}

func TestGenerateSummaryWithInsights_ReplacesInvalidSummary(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "hello")

	stale := entities.NewSummary("meet-123", "Please provide more context", nil, entities.Insights{}, time.Now())
	_, err := f.summaries.SaveIfInvalid(context.Background(), stale)
	require.NoError(t, err)

	f.gen.onPrompt(prefixSummary, `{"summary":"Greetings were exchanged."}`, nil).Once()
	f.gen.onPrompt(prefixActions, "", nil).Once()
	f.gen.onPrompt(prefixInsights, `{"sentiment":"neutral","keyTopics":[],"decisions":[]}`, nil).Once()

	outcome, err := f.svc.GenerateSummaryWithInsights(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, outcome)

	summary, err := f.svc.GetSummary(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, "Greetings were exchanged.", summary.Summary)
}

func TestGenerateSummaryWithInsights_Locked(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "hello")

	release, ok, err := f.locker.TryLock(context.Background(), "summary:meet-123", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	outcome, err := f.svc.GenerateSummaryWithInsights(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeLocked, outcome)
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateSummaryWithInsights_RetriesInsideJob(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "hello")

	unavailable := &pkgai.APIError{Service: "gemini", StatusCode: 503, Message: "overloaded"}
	f.gen.onPrompt(prefixSummary, "", unavailable)
	f.gen.onPrompt(prefixFallback, "", unavailable)

	ctx, cancel := jobcontext.JobBegin(context.Background(), "meet-123", summaryJobType, 0, jobcontext.Options{})
	defer cancel()

	outcome, err := f.svc.GenerateSummaryWithInsights(ctx, "meet-123")
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.True(t, jobcontext.IsRetryableError(err))
	assert.Equal(t, 0, f.summaries.Saves())

	// last attempt stores the placeholder instead
	f.gen.onPrompt(prefixActions, "", nil)
	f.gen.onPrompt(prefixInsights, `{"sentiment":"neutral","keyTopics":[],"decisions":[]}`, nil)
	last := jobcontext.SetRetryAttempt(ctx, jobcontext.GetMaxRetries(ctx)-1)
	outcome, err = f.svc.GenerateSummaryWithInsights(last, "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, outcome)

	summary, err := f.svc.GetSummary(context.Background(), "meet-123")
	require.NoError(t, err)
	assert.Equal(t, FailedSummary, summary.Summary)
}

func TestService_Disabled(t *testing.T) {
	f := newFixture(t, false)
	f.seedTranscript(t, "meet-123", "hello")
	ctx := context.Background()

	outcome, err := f.svc.GenerateSummaryWithInsights(ctx, "meet-123")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDisabled, outcome)

	_, err = f.svc.Ask(ctx, "meet-123", "what happened?")
	assert.ErrorIs(t, err, entities.ErrAIDisabled)

	assert.Equal(t, UnavailableCleanup, f.svc.CleanTranscriptChunk(ctx, "uh so yeah"))
	assert.Equal(t, []string{UnavailableActionItem}, f.svc.ExtractActionItems(ctx, "text"))

	insights := f.svc.AnalyzeInsights(ctx, "text")
	assert.Equal(t, entities.SentimentNeutral, insights.Sentiment)
	assert.Equal(t, []string{UnavailableInsight}, insights.KeyTopics)
	assert.False(t, f.svc.Enabled())
}

func TestAsk_RecordsChat(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "The launch is on Friday.")
	ctx := context.Background()

	var prompt string
	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, prefixChat)
	}), mock.Anything).Run(func(args mock.Arguments) {
		prompt = args.String(1)
	}).Return("Friday.", nil).Once()
	f.gen.onPrompt(prefixChat, "", assert.AnError).Once()

	entry, err := f.svc.Ask(ctx, "meet-123", "When is the launch?")
	require.NoError(t, err)
	assert.Equal(t, "Friday.", entry.A)
	assert.Contains(t, prompt, "] The launch is on Friday.")
	assert.Contains(t, prompt, "User Question: When is the launch?")

	entry, err = f.svc.Ask(ctx, "meet-123", "Who owns it?")
	require.NoError(t, err)
	assert.Equal(t, UnableToAnswer, entry.A)

	chat, err := f.svc.GetChat(ctx, "meet-123")
	require.NoError(t, err)
	assert.Equal(t, []entities.ChatEntry{
		{Q: "When is the launch?", A: "Friday."},
		{Q: "Who owns it?", A: UnableToAnswer},
	}, chat)

	require.NoError(t, f.svc.ClearChat(ctx, "meet-123"))
	chat, err = f.svc.GetChat(ctx, "meet-123")
	require.NoError(t, err)
	assert.Empty(t, chat)
	assert.NotNil(t, chat)
}

func TestCleanTranscriptChunk(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.gen.onPrompt(prefixClean, "  We should ship Friday.  ", nil).Once()
	f.gen.onPrompt(prefixClean, "", nil).Once()
	f.gen.onPrompt(prefixClean, "", assert.AnError).Once()

	assert.Equal(t, "We should ship Friday.", f.svc.CleanTranscriptChunk(ctx, "uh we should um ship friday"))
	assert.Equal(t, EmptyCleanup, f.svc.CleanTranscriptChunk(ctx, "um"))
	assert.Equal(t, FailedCleanup, f.svc.CleanTranscriptChunk(ctx, "uh"))
}

func TestSummaryWorkerPool(t *testing.T) {
	f := newFixture(t, true)
	f.seedTranscript(t, "meet-123", "hello")

	f.gen.onPrompt(prefixSummary, `{"summary":"Hello was said."}`, nil)
	f.gen.onPrompt(prefixActions, "", nil)
	f.gen.onPrompt(prefixInsights, `{"sentiment":"neutral","keyTopics":[],"decisions":[]}`, nil)

	assert.False(t, f.svc.Enqueue("meet-123"), "queue rejects work before start")

	require.NoError(t, f.svc.StartWorkerPool(context.Background(), 2))
	assert.Error(t, f.svc.StartWorkerPool(context.Background(), 2))

	assert.True(t, f.svc.Enqueue("meet-123"))
	require.Eventually(t, func() bool {
		return f.summaries.Saves() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.svc.StopWorkerPool())
	assert.Error(t, f.svc.StopWorkerPool())
	assert.False(t, f.svc.Enqueue("meet-123"))
}

func TestSummaryWorkerPool_StopRacingEnqueue(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t, false)
		svc := f.svc.(*aiService)
		require.NoError(t, svc.StartWorkerPool(context.Background(), 1))

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				svc.Enqueue(fmt.Sprintf("meet-%03d", i))
			}(i)
		}
		require.NoError(t, svc.StopWorkerPool())
		wg.Wait()

		assert.Empty(t, svc.jobs, "round %d left jobs queued after stop", round)
		svc.pendingMutex.Lock()
		assert.Empty(t, svc.pending, "round %d left meetings marked pending", round)
		svc.pendingMutex.Unlock()
	}
}
