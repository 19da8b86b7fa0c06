package meeting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/calendar"
)

// RangeMaxResults caps EventsInRange
const RangeMaxResults = 100

// CalendarClient lists events with a user's token
type CalendarClient interface {
	ListEvents(ctx context.Context, ts oauth2.TokenSource, q calendar.Query) ([]calendar.Event, error)
}

// TokenSourceProvider refreshes stored Google tokens
type TokenSourceProvider interface {
	TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource
}

// Service syncs calendar events into meetings and serves meeting lookups
type Service struct {
	meetingRepo    repositories.MeetingRepository
	invitationRepo repositories.InvitationRepository
	userRepo       repositories.UserRepository
	calendar       CalendarClient
	tokens         TokenSourceProvider
	clock          clock.Clock
	logger         *zap.Logger
}

// NewService creates a meeting service
func NewService(
	meetingRepo repositories.MeetingRepository,
	invitationRepo repositories.InvitationRepository,
	userRepo repositories.UserRepository,
	calendarClient CalendarClient,
	tokens TokenSourceProvider,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		meetingRepo:    meetingRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		calendar:       calendarClient,
		tokens:         tokens,
		clock:          clk,
		logger:         logger,
	}
}

// UpcomingEvents returns video events from now until next Sunday midnight.
// Without a stored Google token it returns no events and ErrNoGoogleToken.
func (s *Service) UpcomingEvents(ctx context.Context, userID uuid.UUID) ([]calendar.Event, error) {
	now := s.clock.Now()
	return s.listVideoEvents(ctx, userID, calendar.Query{
		From: now,
		To:   calendar.NextSunday(now),
	})
}

// EventsInRange returns up to RangeMaxResults video events between from and to
func (s *Service) EventsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]calendar.Event, error) {
	return s.listVideoEvents(ctx, userID, calendar.Query{
		From:       from,
		To:         to,
		MaxResults: RangeMaxResults,
	})
}

func (s *Service) listVideoEvents(ctx context.Context, userID uuid.UUID, q calendar.Query) ([]calendar.Event, error) {
	ts, err := s.tokenSource(ctx, userID)
	if err != nil {
		return []calendar.Event{}, err
	}

	events, err := s.calendar.ListEvents(ctx, ts, q)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to fetch calendar events",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return []calendar.Event{}, err
	}
	return calendar.FilterVideoEvents(events), nil
}

// SyncMeetings stores upcoming video events that are not yet meetings and
// returns the ids it saved
func (s *Service) SyncMeetings(ctx context.Context, userID uuid.UUID) ([]string, error) {
	events, err := s.UpcomingEvents(ctx, userID)
	if err != nil {
		return []string{}, err
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	existing, err := s.meetingRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return []string{}, fmt.Errorf("failed to check existing meetings: %w", err)
	}

	saved := make([]string, 0)
	for _, e := range events {
		if existing[e.ID] {
			continue
		}
		meeting := meetingFromEvent(e, userID)
		created, err := s.meetingRepo.Create(ctx, meeting)
		if err != nil {
			return saved, fmt.Errorf("failed to save meeting %s: %w", e.ID, err)
		}
		if created {
			saved = append(saved, e.ID)
		}
	}

	if s.logger != nil {
		s.logger.Info("📅 Calendar synced",
			zap.String("user_id", userID.String()),
			zap.Int("events", len(events)),
			zap.Int("saved", len(saved)),
		)
	}
	return saved, nil
}

func meetingFromEvent(e calendar.Event, userID uuid.UUID) *entities.Meeting {
	m := entities.NewMeeting(e.ID, userID, e.Summary)
	m.Description = e.Description
	m.MeetLink = e.VideoLink()
	m.StartTime = e.Start.Time()
	m.EndTime = e.End.Time()
	return m
}

// GetMeetingDetails returns the meeting to its owner or an accepted invitee,
// creating an invited copy when the user accepted an invitation for an
// event that has no meeting yet
func (s *Service) GetMeetingDetails(ctx context.Context, eventID string, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if meeting != nil {
		role, err := s.roleIn(ctx, meeting, userID)
		if err != nil {
			return nil, err
		}
		if role == RoleNone {
			return nil, entities.ErrForbidden
		}
		return meeting, nil
	}

	invitation, err := s.invitationRepo.FindForInvitee(ctx, eventID, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if invitation == nil || invitation.Status != entities.InvitationAccepted {
		return nil, entities.ErrMeetingNotFound
	}

	meeting = entities.NewInvitedMeeting(eventID, userID, invitation.MeetingTitle)
	if _, err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create invited meeting: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("📨 Created meeting from invitation",
			zap.String("meeting_id", eventID),
			zap.String("user_id", userID.String()),
		)
	}
	return meeting, nil
}

// ListMeetings returns the meetings owned by userID
func (s *Service) ListMeetings(ctx context.Context, userID uuid.UUID) ([]*entities.Meeting, error) {
	meetings, err := s.meetingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// Role is what a user is to a meeting
type Role string

const (
	RoleNone    Role = "none"
	RoleOwner   Role = "owner"
	RoleInvitee Role = "invitee"
)

// RoleOf reports whether userID owns the meeting or accepted an invitation
// to it. Unknown meetings return ErrMeetingNotFound.
func (s *Service) RoleOf(ctx context.Context, meetingID string, userID uuid.UUID) (Role, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return RoleNone, fmt.Errorf("failed to get meeting: %w", err)
	}
	if meeting == nil {
		return RoleNone, entities.ErrMeetingNotFound
	}
	return s.roleIn(ctx, meeting, userID)
}

func (s *Service) roleIn(ctx context.Context, meeting *entities.Meeting, userID uuid.UUID) (Role, error) {
	if meeting.UserID == userID {
		return RoleOwner, nil
	}

	invitation, err := s.invitationRepo.FindForInvitee(ctx, meeting.ID, userID.String())
	if err != nil {
		return RoleNone, fmt.Errorf("failed to get invitation: %w", err)
	}
	if invitation != nil && invitation.Status == entities.InvitationAccepted {
		return RoleInvitee, nil
	}
	return RoleNone, nil
}

// UpdateStatus moves a meeting to status
func (s *Service) UpdateStatus(ctx context.Context, meetingID string, status entities.MeetingStatus) error {
	if !status.IsValid() {
		return entities.ErrInvalidMeetingStatus
	}
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to get meeting: %w", err)
	}
	if meeting == nil {
		return entities.ErrMeetingNotFound
	}
	if err := s.meetingRepo.UpdateStatus(ctx, meetingID, status); err != nil {
		return fmt.Errorf("failed to update meeting status: %w", err)
	}
	return nil
}

func (s *Service) tokenSource(ctx context.Context, userID uuid.UUID) (oauth2.TokenSource, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, entities.ErrNoGoogleToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	token := user.GoogleToken()
	if token == nil {
		return nil, entities.ErrNoGoogleToken
	}
	return &persistingTokenSource{
		base:     s.tokens.TokenSource(ctx, token),
		user:     user,
		userRepo: s.userRepo,
		ctx:      ctx,
		last:     token.AccessToken,
		logger:   s.logger,
	}, nil
}

// persistingTokenSource stores refreshed tokens back on the user
type persistingTokenSource struct {
	mu       sync.Mutex
	base     oauth2.TokenSource
	user     *entities.User
	userRepo repositories.UserRepository
	ctx      context.Context
	last     string
	logger   *zap.Logger
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken == p.last {
		return token, nil
	}
	p.last = token.AccessToken
	p.user.SetGoogleToken(token)
	if err := p.userRepo.UpdateGoogleToken(p.ctx, p.user); err != nil && p.logger != nil {
		p.logger.Warn("⚠️ Failed to store refreshed Google token",
			zap.String("user_id", p.user.ID.String()),
			zap.Error(err),
		)
	}
	return token, nil
}
