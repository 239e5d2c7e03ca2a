package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/invisiblewalls/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a websocket peer
	pongWait = pingPeriod + writeWait

	// Largest command a websocket client may send
	maxCommandSize = 512

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Transport names used in logs
const (
	TransportSSE       = "sse"
	TransportWebsocket = "websocket"
)

// ErrHubClosed is returned when a hub shuts down while a client joins
var ErrHubClosed = errors.New("live hub closed")

// Client is a single connected watcher of a session
type Client struct {
	playerID    model.PlayerID
	transport   string
	send        chan Message
	joined      chan struct{}
	connectedAt time.Time
}

// NewClient creates a new client
func NewClient(playerID model.PlayerID, transport string) *Client {
	return &Client{
		playerID:    playerID,
		transport:   transport,
		send:        make(chan Message, sendBufferSize),
		joined:      make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// Messages returns the channel the hub delivers to; it closes when the
// client leaves the hub
func (c *Client) Messages() <-chan Message {
	return c.send
}

// Greeting builds the messages a client receives right after joining
type Greeting func() ([]Message, error)

// ServeSSE streams a session's events to the client as server-sent events
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, playerID model.PlayerID, greet Greeting) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := NewClient(playerID, TransportSSE)
	if !hub.Register(client) {
		return ErrHubClosed
	}
	defer hub.Unregister(client)

	initial, err := greet()
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Ask EventSource clients to reconnect after 3s
	if _, err := w.Write([]byte("retry: 3000\n\n")); err != nil {
		return nil
	}
	for _, msg := range initial {
		if _, err := w.Write(formatSSEMessage(msg.Event, string(msg.Data))); err != nil {
			return nil
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return nil
			}
			if _, err := w.Write(formatSSEMessage(message.Event, string(message.Data))); err != nil {
				return nil
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return nil
			}
			flusher.Flush()

		case <-r.Context().Done():
			return nil
		}
	}
}

// Command is a message sent by a websocket client
type Command struct {
	Type string `json:"type"`
	Dx   int    `json:"dx,omitempty"`
	Dy   int    `json:"dy,omitempty"`
}

// Command types accepted over a websocket
const (
	CommandMove    = "move"
	CommandShuffle = "shuffle"
)

// CommandHandler applies a client command. A returned error is reported
// back to that client only.
type CommandHandler func(ctx context.Context, cmd Command) error

// Frame is the JSON envelope written to websocket clients
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServeWebsocket pushes a session's events to conn and feeds the commands
// it reads to handle. It returns when either side closes the connection.
func ServeWebsocket(ctx context.Context, conn *websocket.Conn, hub *Hub, playerID model.PlayerID, greet Greeting, handle CommandHandler, logger *slog.Logger) error {
	client := NewClient(playerID, TransportWebsocket)
	if !hub.Register(client) {
		return ErrHubClosed
	}
	defer func() { _ = conn.Close() }()
	defer hub.Unregister(client)

	initial, err := greet()
	if err != nil {
		return err
	}
	for _, msg := range initial {
		if err := writeFrame(conn, msg); err != nil {
			return nil
		}
	}

	// Only the write pump writes to conn once it starts; the read loop
	// hands replies to it through replies.
	replies := make(chan Message, 16)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go writePump(ctx, conn, client.send, replies, cancel)

	conn.SetReadLimit(maxCommandSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return nil
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			logger.Debug("discarding malformed websocket command",
				slog.String("player_id", string(playerID)),
				slog.String("error", err.Error()))
			continue
		}

		if err := handle(ctx, cmd); err != nil {
			reply, mErr := errorMessage(err)
			if mErr != nil {
				continue
			}
			select {
			case replies <- reply:
			default:
			}
		}
	}
}

// writePump owns all writes to conn after the greeting
func writePump(ctx context.Context, conn *websocket.Conn, send <-chan Message, replies <-chan Message, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		// Unblocks the read loop
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := writeFrame(conn, msg); err != nil {
				return
			}

		case msg := <-replies:
			if err := writeFrame(conn, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(Frame{Type: msg.Event, Data: json.RawMessage(msg.Data)})
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
