package live

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mcoot/invisiblewalls/internal/api/apierr"
	"github.com/mcoot/invisiblewalls/internal/api/response"
	"github.com/mcoot/invisiblewalls/internal/model"
)

// Event names that are not session transitions
const (
	EventSnapshot = "snapshot"
	EventError    = "error"
)

// EventPayload is the data of every session event sent to live clients
type EventPayload struct {
	Type      string           `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Session   response.Session `json:"session"`
}

// Broadcaster publishes session events to the hub watching each session.
// Sessions nobody is watching are skipped.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "live-broadcaster")),
	}
}

// Publish implements session.Publisher
func (b *Broadcaster) Publish(event model.Event) {
	hub := b.hubManager.GetHub(event.SessionID)
	if hub == nil {
		return
	}

	msg, err := EventMessage(string(event.Type), event.Timestamp, event.Session)
	if err != nil {
		b.logger.Error("failed to encode session event",
			slog.String("session_id", string(event.SessionID)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err),
		)
		return
	}
	hub.Broadcast(msg)
}

// EventMessage encodes a session snapshot as a live message
func EventMessage(eventType string, at time.Time, s *model.Session) (Message, error) {
	data, err := json.Marshal(EventPayload{
		Type:      eventType,
		Timestamp: at,
		Session:   response.SessionFromModel(s),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Event: eventType, Data: data}, nil
}

// errorMessage reports a rejected command to the client that sent it
func errorMessage(err error) (Message, error) {
	data, mErr := json.Marshal(apierr.FromError(err))
	if mErr != nil {
		return Message{}, mErr
	}
	return Message{Event: EventError, Data: data}, nil
}
