// Package search keeps a full-text index of meetings for the memories view.
package search

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// Fields of an indexed meeting
const (
	FieldTitle      = "title"
	FieldSummary    = "summary"
	FieldTranscript = "transcript"
	FieldUserID     = "user_id"
)

// MeetingDocument is what gets indexed per meeting
type MeetingDocument struct {
	MeetingID  string
	UserID     string
	Title      string
	Summary    string
	Transcript string
}

func (d MeetingDocument) fields() map[string]interface{} {
	return map[string]interface{}{
		FieldTitle:      d.Title,
		FieldSummary:    d.Summary,
		FieldTranscript: d.Transcript,
		FieldUserID:     d.UserID,
	}
}

// Hit is one search result
type Hit struct {
	MeetingID string
	Score     float64
}

// Index is a Bleve index of meetings
type Index struct {
	index bleve.Index
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	// standard analyzer: lowercase + tokenize, no stemming
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt(FieldTitle, text)
	doc.AddFieldMappingsAt(FieldSummary, text)
	doc.AddFieldMappingsAt(FieldTranscript, text)

	owner := bleve.NewKeywordFieldMapping()
	owner.IncludeInAll = false
	doc.AddFieldMappingsAt(FieldUserID, owner)

	im.AddDocumentMapping("meeting", doc)
	im.DefaultType = "meeting"
	im.DefaultMapping = doc
	return im
}

// NewIndex opens the index at path, creating it if needed.
// An empty path keeps the index in memory.
func NewIndex(path string) (*Index, error) {
	im := newMapping()

	if path == "" {
		idx, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	if _, err := os.Stat(path); err == nil {
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &Index{index: idx}, nil
}

// IndexMeeting adds or replaces a meeting document
func (i *Index) IndexMeeting(_ context.Context, doc MeetingDocument) error {
	if err := i.index.Index(doc.MeetingID, doc.fields()); err != nil {
		return fmt.Errorf("failed to index meeting %s: %w", doc.MeetingID, err)
	}
	return nil
}

// Search matches text against title, summary and transcript of userID's meetings
func (i *Index) Search(_ context.Context, userID, text string, limit int) ([]Hit, error) {
	match := bleve.NewMatchQuery(text)

	owner := bleve.NewTermQuery(userID)
	owner.SetField(FieldUserID)

	var q blevequery.Query = bleve.NewConjunctionQuery(match, owner)
	req := bleve.NewSearchRequest(q)
	req.Size = limit

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]Hit, len(results.Hits))
	for n, h := range results.Hits {
		hits[n] = Hit{MeetingID: h.ID, Score: h.Score}
	}
	return hits, nil
}

// Delete removes a meeting from the index
func (i *Index) Delete(_ context.Context, meetingID string) error {
	return i.index.Delete(meetingID)
}

// DocCount returns the number of indexed meetings
func (i *Index) DocCount() (uint64, error) {
	return i.index.DocCount()
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}
