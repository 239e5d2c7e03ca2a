package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Session lifecycle events
	EventSessionCreated    EventType = "session_created"
	EventRoundStarted      EventType = "round_started"
	EventSessionFinished   EventType = "session_finished"
	EventReturnedToMenu    EventType = "returned_to_menu"
	EventDifficultyChanged EventType = "difficulty_changed"

	// Round events
	EventPlayerMoved  EventType = "player_moved"
	EventKeyCollected EventType = "key_collected"
	EventHazardHit    EventType = "hazard_hit"
	EventHitCleared   EventType = "hit_cleared"
	EventRoundWon     EventType = "round_won"
	EventRoundTimeout EventType = "round_timeout"
	EventTick         EventType = "tick"
	EventShuffled     EventType = "shuffled"
)

// Event is emitted after every state transition of a session
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID SessionID
	PlayerID  PlayerID
	Session   *Session // snapshot taken after the transition
}
