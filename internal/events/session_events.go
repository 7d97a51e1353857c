package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type EventType string

const (
	SessionStarted   EventType = "session.started"
	SessionCompleted EventType = "session.completed"
	SessionAbandoned EventType = "session.abandoned"
)

// SessionEvent is the lifecycle record published for each play-through.
type SessionEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	SessionID  string `json:"session_id"`
	ActivityID uint   `json:"activity_id"`
	Kind       string `json:"kind"`

	// Populated for completion events only.
	Score      *int `json:"score,omitempty"`
	TotalUnits *int `json:"total_units,omitempty"`
}

// NewSessionEvent builds an event with envelope fields filled in.
func NewSessionEvent(eventType EventType, sessionID string, activityID uint, kind string) *SessionEvent {
	return &SessionEvent{
		ID:         watermill.NewUUID(),
		Type:       eventType,
		Source:     "quizplayer-service",
		Version:    "1.0",
		Timestamp:  time.Now().UTC(),
		SessionID:  sessionID,
		ActivityID: activityID,
		Kind:       kind,
	}
}

// WithSummary attaches the terminal score to a completion event.
func (e *SessionEvent) WithSummary(score, totalUnits int) *SessionEvent {
	e.Score = &score
	e.TotalUnits = &totalUnits
	return e
}
