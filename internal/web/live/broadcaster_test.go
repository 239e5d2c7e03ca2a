package live

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/testutil"
)

func playingSession() *model.Session {
	return &model.Session{
		ID:         "sess1",
		PlayerID:   "player1",
		Mode:       model.ModeCampaign,
		Status:     model.StatusPlaying,
		Difficulty: model.DifficultyMedium,
		RoundCount: 3,
		Round: model.RoundState{
			GridSize:     5,
			KeysRequired: 1,
			PlayerPos:    model.Position{X: 1, Y: 0},
			DoorPos:      model.Position{X: 4, Y: 4},
			KeyPos:       []model.Position{{X: 2, Y: 2}},
			Hazards:      []model.Position{{X: 0, Y: 1}, {X: 3, Y: 3}},
			Revealed:     []model.Position{{X: 0, Y: 1}},
			TimeLeft:     200 * time.Second,
		},
	}
}

func TestBroadcaster_SkipsUnwatchedSessions(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	b := NewBroadcaster(manager, testutil.NopLogger())

	b.Publish(model.Event{Type: model.EventTick, SessionID: "sess1", Session: playingSession()})

	assert.Nil(t, manager.GetHub("sess1"))
}

func TestBroadcaster_PublishesSnapshotToWatchers(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	b := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("sess1")
	client := NewClient("player1", TransportSSE)
	require.True(t, hub.Register(client))

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b.Publish(model.Event{
		Type:      model.EventHazardHit,
		Timestamp: at,
		SessionID: "sess1",
		PlayerID:  "player1",
		Session:   playingSession(),
	})

	var msg Message
	select {
	case msg = <-client.send:
	case <-time.After(time.Second):
		t.Fatal("client did not receive event")
	}
	assert.Equal(t, string(model.EventHazardHit), msg.Event)

	var payload struct {
		Type      string    `json:"type"`
		Timestamp time.Time `json:"timestamp"`
		Session   struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Round  struct {
				TimeLeft int               `json:"time_left"`
				Hazards  []json.RawMessage `json:"hazards"`
				Revealed []json.RawMessage `json:"revealed"`
			} `json:"round"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "hazard_hit", payload.Type)
	assert.True(t, at.Equal(payload.Timestamp))
	assert.Equal(t, "sess1", payload.Session.ID)
	assert.Equal(t, "playing", payload.Session.Status)
	assert.Equal(t, 200, payload.Session.Round.TimeLeft)
	assert.Empty(t, payload.Session.Round.Hazards, "hazards stay hidden while playing")
	assert.Len(t, payload.Session.Round.Revealed, 1)
}

func TestEventMessage_ShowsHazardsOnceRoundIsOver(t *testing.T) {
	s := playingSession()
	s.Status = model.StatusTimeout

	msg, err := EventMessage(string(model.EventRoundTimeout), time.Now(), s)
	require.NoError(t, err)

	var payload EventPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Len(t, payload.Session.Round.Hazards, 2)
}

func TestErrorMessage(t *testing.T) {
	msg, err := errorMessage(model.ErrInvalidMove)
	require.NoError(t, err)

	assert.Equal(t, EventError, msg.Event)
	assert.JSONEq(t, `{"code":"INVALID_MOVE","message":"Move must be a single orthogonal step"}`, string(msg.Data))
}
