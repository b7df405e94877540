package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
)

type EventType string

const (
	EventSearch     EventType = "search"
	EventSuggest    EventType = "suggest"
	EventCourseView EventType = "course_view"
)

type SearchEvent struct {
	Type         EventType       `json:"type"`
	Query        string          `json:"query"`
	Terms        []string        `json:"terms"`
	Filters      catalog.Filters `json:"filters"`
	TotalHits    int             `json:"total_hits"`
	ExactHits    int             `json:"exact_hits"`
	FuzzyApplied bool            `json:"fuzzy_applied"`
	LatencyMs    int64           `json:"latency_ms"`
	CacheHit     bool            `json:"cache_hit"`
	Timestamp    time.Time       `json:"timestamp"`
	RequestID    string          `json:"request_id"`
}

type SuggestEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

type CourseViewEvent struct {
	Type      EventType `json:"type"`
	CourseID  string    `json:"course_id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Decode parses a serialized event, dispatching on its type field.
func Decode(data []byte) (any, error) {
	var envelope struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decoding event envelope: %w", err)
	}
	var (
		event any
		err   error
	)
	switch envelope.Type {
	case EventSearch:
		var e SearchEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventSuggest:
		var e SuggestEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventCourseView:
		var e CourseViewEvent
		err = json.Unmarshal(data, &e)
		event = e
	default:
		return nil, fmt.Errorf("unknown event type %q", envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s event: %w", envelope.Type, err)
	}
	return event, nil
}
