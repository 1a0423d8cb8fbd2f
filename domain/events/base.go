package events

import (
	"time"

	"github.com/google/uuid"
)

// SourceGame is the EventBridge source for every event this service emits.
const SourceGame = "dailytens.game"

// Event types
const (
	TypeGameCaptured = "game.captured"
)

// Capture origins
const (
	OriginExtractor = "extractor"
	OriginAuthoring = "authoring"
	OriginCLI       = "cli"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// GameCaptured is raised when a record for a date is created for the first time
type GameCaptured struct {
	BaseEvent
	Date        string `json:"date"`
	Title       string `json:"title"`
	AnswerCount int    `json:"answer_count"`
	Origin      string `json:"origin"`
}

// NewGameCaptured creates a GameCaptured event
func NewGameCaptured(date, title string, answerCount int, origin string, timestamp time.Time) GameCaptured {
	return GameCaptured{
		BaseEvent: BaseEvent{
			EventID:     uuid.NewString(),
			AggregateID: date,
			EventType:   TypeGameCaptured,
			Timestamp:   timestamp,
			Version:     1,
		},
		Date:        date,
		Title:       title,
		AnswerCount: answerCount,
		Origin:      origin,
	}
}
