// Package calendar reads events from the Google Calendar v3 REST API.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Google Calendar API root
const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

// ErrUnauthorized is returned when Google rejects the user's token
var ErrUnauthorized = errors.New("calendar token rejected")

// Event is the subset of a calendar event we use
type Event struct {
	ID             string          `json:"id"`
	Summary        string          `json:"summary"`
	Description    string          `json:"description,omitempty"`
	Start          EventTime       `json:"start"`
	End            EventTime       `json:"end"`
	HangoutLink    string          `json:"hangoutLink,omitempty"`
	ConferenceData *ConferenceData `json:"conferenceData,omitempty"`
}

// EventTime is either a timed or an all-day boundary
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Time parses the boundary, returning nil when absent or malformed
func (t EventTime) Time() *time.Time {
	if t.DateTime != "" {
		if v, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return &v
		}
	}
	if t.Date != "" {
		if v, err := time.Parse("2006-01-02", t.Date); err == nil {
			return &v
		}
	}
	return nil
}

// ConferenceData holds the join entry points
type ConferenceData struct {
	EntryPoints []EntryPoint `json:"entryPoints"`
}

// EntryPoint is one way to join a conference
type EntryPoint struct {
	EntryPointType string `json:"entryPointType"`
	URI            string `json:"uri"`
	Label          string `json:"label,omitempty"`
}

// VideoLink returns the first video entry point uri, or ""
func (e Event) VideoLink() string {
	if e.ConferenceData == nil {
		return ""
	}
	for _, ep := range e.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" && ep.URI != "" {
			return ep.URI
		}
	}
	return ""
}

// FilterVideoEvents keeps events that can be joined by video
func FilterVideoEvents(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.VideoLink() != "" {
			out = append(out, e)
		}
	}
	return out
}

// NextSunday returns midnight of the coming Sunday in now's location.
// On a Sunday it returns the Sunday a week later.
func NextSunday(now time.Time) time.Time {
	days := 7 - int(now.Weekday())
	y, m, d := now.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, now.Location())
}

// Query selects a window of events
type Query struct {
	From       time.Time
	To         time.Time
	MaxResults int
}

type eventsResponse struct {
	Items []Event `json:"items"`
}

// Client calls the Calendar API on behalf of a user token
type Client struct {
	baseURL string
	logger  *zap.Logger
	backoff func() backoff.BackOff
}

// NewClient creates a calendar client. An empty baseURL uses Google.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		logger:  logger,
		backoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxInterval = 5 * time.Second
			bo.MaxElapsedTime = 15 * time.Second
			return bo
		},
	}
}

// ListEvents returns single events of the primary calendar ordered by start time.
// 5xx responses are retried with exponential backoff.
func (c *Client) ListEvents(ctx context.Context, ts oauth2.TokenSource, q Query) ([]Event, error) {
	params := url.Values{}
	params.Set("timeMin", q.From.Format(time.RFC3339))
	params.Set("timeMax", q.To.Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")
	params.Set("conferenceDataVersion", "1")
	if q.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(q.MaxResults))
	}
	endpoint := c.baseURL + "/calendars/primary/events?" + params.Encode()

	httpClient := oauth2.NewClient(ctx, ts)

	var events []Event
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				return backoff.Permanent(fmt.Errorf("%w: %v", ErrUnauthorized, err))
			}
			return fmt.Errorf("calendar request failed: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(ErrUnauthorized)
		case resp.StatusCode >= 500:
			return fmt.Errorf("calendar API error: status=%d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("calendar API error: status=%d, body=%s", resp.StatusCode, string(body)))
		}

		var out eventsResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode events: %w", err))
		}
		events = out.Items
		return nil
	}

	notify := func(err error, wait time.Duration) {
		if c.logger != nil {
			c.logger.Warn("🔁 Retrying calendar fetch", zap.Error(err), zap.Duration("wait", wait))
		}
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(c.backoff(), ctx), notify); err != nil {
		return nil, err
	}
	return events, nil
}
