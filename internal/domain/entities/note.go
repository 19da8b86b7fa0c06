package entities

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

// Note is a user note attached to a meeting
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteCollection stores all notes of a meeting keyed by note id
type NoteCollection struct {
	MeetingID string                              `json:"meeting_id" gorm:"type:varchar(255);primary_key"`
	Notes     datatypes.JSONType[map[string]Note] `json:"notes" gorm:"type:jsonb;not null"`
	UpdatedAt time.Time                           `json:"updated_at" gorm:"type:timestamp;not null"`
}

// TableName specifies the table name for GORM
func (NoteCollection) TableName() string {
	return "notes"
}

// Sorted returns the notes ordered by creation time
func (c *NoteCollection) Sorted() []Note {
	if c == nil {
		return []Note{}
	}
	notes := make([]Note, 0, len(c.Notes.Data()))
	for id, n := range c.Notes.Data() {
		n.ID = id
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].ID < notes[j].ID
		}
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes
}
