// Package memory holds map-backed repositories for tests and the offline CLI.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// MeetingRepository keeps meetings in a map
type MeetingRepository struct {
	mu       sync.RWMutex
	meetings map[string]entities.Meeting
}

// NewMeetingRepository creates an empty meeting store
func NewMeetingRepository() *MeetingRepository {
	return &MeetingRepository{meetings: make(map[string]entities.Meeting)}
}

func (r *MeetingRepository) Create(_ context.Context, meeting *entities.Meeting) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[meeting.ID]; ok {
		return false, nil
	}
	r.meetings[meeting.ID] = *meeting
	return true, nil
}

func (r *MeetingRepository) FindByID(_ context.Context, id string) (*entities.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MeetingRepository) ExistingIDs(_ context.Context, ids []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.meetings[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *MeetingRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*entities.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.Meeting, 0)
	for _, m := range r.meetings {
		if m.UserID == userID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MeetingRepository) FindByIDs(_ context.Context, ids []string) ([]*entities.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.Meeting, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.meetings[id]; ok {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *MeetingRepository) UpdateStatus(_ context.Context, id string, status entities.MeetingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return entities.ErrMeetingNotFound
	}
	m.Status = status
	m.UpdatedAt = time.Now()
	r.meetings[id] = m
	return nil
}

// TranscriptRepository keeps transcripts in a map
type TranscriptRepository struct {
	mu   sync.RWMutex
	docs map[string]entities.Transcript
}

// NewTranscriptRepository creates an empty transcript store
func NewTranscriptRepository() *TranscriptRepository {
	return &TranscriptRepository{docs: make(map[string]entities.Transcript)}
}

func (r *TranscriptRepository) Get(_ context.Context, meetingID string) (*entities.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.docs[meetingID]
	if !ok {
		return nil, nil
	}
	t.Segments = append(datatypes.JSONSlice[entities.TranscriptSegment]{}, t.Segments...)
	return &t, nil
}

func (r *TranscriptRepository) Save(_ context.Context, transcript *entities.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := *transcript
	t.Segments = append(datatypes.JSONSlice[entities.TranscriptSegment]{}, transcript.Segments...)
	r.docs[t.MeetingID] = t
	return nil
}

// SummaryRepository keeps summaries in a map
type SummaryRepository struct {
	mu        sync.RWMutex
	summaries map[string]entities.Summary
	saves     int
}

// NewSummaryRepository creates an empty summary store
func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{summaries: make(map[string]entities.Summary)}
}

func (r *SummaryRepository) Get(_ context.Context, meetingID string) (*entities.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[meetingID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SummaryRepository) SaveIfInvalid(_ context.Context, summary *entities.Summary) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.summaries[summary.MeetingID]; ok && existing.IsValid() {
		return false, nil
	}
	r.summaries[summary.MeetingID] = *summary
	r.saves++
	return true, nil
}

// Saves counts successful writes
func (r *SummaryRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

// ChatRepository keeps chat logs in a map
type ChatRepository struct {
	mu    sync.RWMutex
	chats map[string]entities.ChatLog
}

// NewChatRepository creates an empty chat store
func NewChatRepository() *ChatRepository {
	return &ChatRepository{chats: make(map[string]entities.ChatLog)}
}

func (r *ChatRepository) Get(_ context.Context, meetingID string) (*entities.ChatLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chats[meetingID]
	if !ok {
		return nil, nil
	}
	c.Chat = append(datatypes.JSONSlice[entities.ChatEntry]{}, c.Chat...)
	return &c, nil
}

func (r *ChatRepository) Save(_ context.Context, chat *entities.ChatLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *chat
	c.Chat = append(datatypes.JSONSlice[entities.ChatEntry]{}, chat.Chat...)
	r.chats[c.MeetingID] = c
	return nil
}

// NoteRepository keeps note collections in a map
type NoteRepository struct {
	mu    sync.RWMutex
	notes map[string]map[string]entities.Note
	times map[string]time.Time
}

// NewNoteRepository creates an empty note store
func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		notes: make(map[string]map[string]entities.Note),
		times: make(map[string]time.Time),
	}
}

func (r *NoteRepository) Get(_ context.Context, meetingID string) (*entities.NoteCollection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notes, ok := r.notes[meetingID]
	if !ok {
		return nil, nil
	}
	return &entities.NoteCollection{
		MeetingID: meetingID,
		Notes:     datatypes.NewJSONType(copyNotes(notes)),
		UpdatedAt: r.times[meetingID],
	}, nil
}

func (r *NoteRepository) Save(_ context.Context, c *entities.NoteCollection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[c.MeetingID] = copyNotes(c.Notes.Data())
	r.times[c.MeetingID] = c.UpdatedAt
	return nil
}

func (r *NoteRepository) Delete(_ context.Context, meetingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notes, meetingID)
	delete(r.times, meetingID)
	return nil
}

func copyNotes(in map[string]entities.Note) map[string]entities.Note {
	out := make(map[string]entities.Note, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// InvitationRepository keeps invitations in a map
type InvitationRepository struct {
	mu          sync.RWMutex
	invitations map[uuid.UUID]entities.Invitation
}

// NewInvitationRepository creates an empty invitation store
func NewInvitationRepository() *InvitationRepository {
	return &InvitationRepository{invitations: make(map[uuid.UUID]entities.Invitation)}
}

func (r *InvitationRepository) Create(_ context.Context, inv *entities.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invitations[inv.ID] = *inv
	return nil
}

func (r *InvitationRepository) FindByID(_ context.Context, id uuid.UUID) (*entities.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvitationRepository) Update(_ context.Context, inv *entities.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invitations[inv.ID]; !ok {
		return entities.ErrInvitationNotFound
	}
	r.invitations[inv.ID] = *inv
	return nil
}

func (r *InvitationRepository) FindForInvitee(_ context.Context, eventID, inviteeID string) (*entities.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invitations {
		if inv.EventID == eventID && inv.InviteeID == inviteeID {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *InvitationRepository) ListPendingByEmail(_ context.Context, email string) ([]*entities.Invitation, error) {
	return r.filter(func(inv entities.Invitation) bool {
		return strings.EqualFold(inv.InviteeEmail, email) && inv.Status == entities.InvitationPending
	}), nil
}

func (r *InvitationRepository) ListAcceptedByInvitee(_ context.Context, inviteeID string) ([]*entities.Invitation, error) {
	return r.filter(func(inv entities.Invitation) bool {
		return inv.InviteeID == inviteeID && inv.Status == entities.InvitationAccepted
	}), nil
}

func (r *InvitationRepository) filter(keep func(entities.Invitation) bool) []*entities.Invitation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.Invitation, 0)
	for _, inv := range r.invitations {
		if keep(inv) {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
