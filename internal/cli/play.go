package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var muted bool

	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Play a session interactively in the terminal",
		Long: `Open a full-screen board for the session, driven over a websocket.

Keys:
  arrows, wasd, hjkl  move
  space               shuffle the current round
  c / p               start a campaign / practice the first round (at the menu)
  r                   restart the game
  m                   return to the menu
  q, Esc              quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(args[0], muted)
		},
	}

	cmd.Flags().BoolVar(&muted, "mute", false, "Disable sound")

	return cmd
}

// wsFrame is the envelope of every server message
type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsCommand is a message sent to the server
type wsCommand struct {
	Type string `json:"type"`
	Dx   int    `json:"dx,omitempty"`
	Dy   int    `json:"dy,omitempty"`
}

// playView is what the screen shows
type playView struct {
	session   Session
	connected bool
	status    string
	statusErr bool
}

var tcellCellStyles = map[cellKind]tcell.Style{
	cellEmpty:    tcell.StyleDefault.Foreground(tcell.ColorGray),
	cellVisited:  tcell.StyleDefault.Foreground(tcell.ColorTeal),
	cellHazard:   tcell.StyleDefault.Foreground(tcell.ColorRed),
	cellRevealed: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	cellHit:      tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true),
	cellKey:      tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true),
	cellDoor:     tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	cellDoorOpen: tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
	cellPlayer:   tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlack).Bold(true),
}

// keyDirection maps a key press to a step
func keyDirection(ev *tcell.EventKey) (dx, dy int, ok bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return 0, -1, true
	case tcell.KeyDown:
		return 0, 1, true
	case tcell.KeyLeft:
		return -1, 0, true
	case tcell.KeyRight:
		return 1, 0, true
	case tcell.KeyRune:
		dx, dy, err := parseDirection(string(ev.Rune()))
		return dx, dy, err == nil
	}
	return 0, 0, false
}

func runPlay(sessionID string, muted bool) error {
	url, err := client.LiveURL("/sessions/"+sessionID+"/ws", true)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return fmt.Errorf("websocket connect failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("websocket connect failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	pulser := NewPulser(muted)
	defer pulser.Close()

	// Frames from the server
	frames := make(chan wsFrame, 16)
	readErr := make(chan error, 1)
	go func() {
		for {
			var frame wsFrame
			if err := conn.ReadJSON(&frame); err != nil {
				readErr <- err
				return
			}
			frames <- frame
		}
	}()

	// Terminal input
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	view := &playView{connected: true, status: "Connecting..."}
	drawPlay(screen, view)

	send := func(cmd wsCommand) {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(cmd); err != nil {
			view.status, view.statusErr = "send failed: "+err.Error(), true
		}
	}
	rest := func(action string, body any) {
		var s Session
		if err := client.Post(sessionPath(sessionID, action), body, &s); err != nil {
			view.status, view.statusErr = err.Error(), true
			return
		}
		view.session = s
	}

	for {
		select {
		case frame := <-frames:
			applyFrame(view, frame, pulser)
		case err := <-readErr:
			view.connected = false
			view.status, view.statusErr = "disconnected: "+err.Error(), true
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return nil
				}
				if dx, dy, ok := keyDirection(ev); ok {
					send(wsCommand{Type: "move", Dx: dx, Dy: dy})
					break
				}
				if ev.Key() != tcell.KeyRune {
					break
				}
				switch ev.Rune() {
				case ' ':
					send(wsCommand{Type: "shuffle"})
				case 'c':
					rest("start", map[string]any{"mode": "campaign"})
				case 'p':
					rest("start", map[string]any{"mode": "practice", "round": 0})
				case 'r':
					rest("restart", nil)
				case 'm':
					rest("menu", nil)
				}
			}
		}
		drawPlay(screen, view)
	}
}

// applyFrame folds a server frame into the view
func applyFrame(view *playView, frame wsFrame, pulser *Pulser) {
	if frame.Type == "error" {
		var apiErr APIError
		if err := json.Unmarshal(frame.Data, &apiErr); err != nil {
			view.status = "server error"
		} else {
			view.status = apiErr.Message
		}
		view.statusErr = true
		return
	}

	var payload eventPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		return
	}
	view.session = payload.Session
	view.statusErr = false

	switch frame.Type {
	case "hazard_hit":
		view.status, view.statusErr = "Bump!", true
		pulser.Bump()
	case "key_collected":
		view.status = "Key collected"
		pulser.Key()
	case "round_won":
		view.status = "Round cleared"
		pulser.Win()
	case "round_timeout":
		view.status, view.statusErr = "Out of time", true
	case "session_finished":
		view.status = "Game over: press r to play again or m for the menu"
	case "snapshot", "round_started":
		view.status = ""
	}
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawPlay(screen tcell.Screen, view *playView) {
	screen.Clear()
	plain := tcell.StyleDefault
	bold := tcell.StyleDefault.Bold(true)

	s := view.session
	drawText(screen, 0, 0, bold, "Invisible Walls")
	if s.ID == "" {
		drawText(screen, 0, 2, plain, view.status)
		screen.Show()
		return
	}

	drawText(screen, 0, 1, plain, fmt.Sprintf("%s  %s  %s", s.Mode, s.Status, s.Difficulty))

	y := 3
	if s.Status == "idle" {
		drawText(screen, 0, y, plain, "c: campaign   p: practice   q: quit")
		y += 2
	} else {
		r := s.Round
		drawText(screen, 0, y, plain, fmt.Sprintf("Round %d/%d  Keys %d/%d  Time %3ds  Moves %d  Bumps %d",
			r.Index+1, s.RoundCount, r.CollectedKeys, r.KeysRequired, r.TimeLeft, r.Moves, r.Bumps))
		y += 2

		for gy, row := range boardCells(r) {
			for gx, kind := range row {
				screen.SetContent(gx*2, y+gy, cellGlyphs[kind], nil, tcellCellStyles[kind])
			}
		}
		y += r.GridSize + 1
	}

	statusStyle := plain
	if view.statusErr {
		statusStyle = statusStyle.Foreground(tcell.ColorRed)
	}
	drawText(screen, 0, y, statusStyle, view.status)
	if !view.connected {
		drawText(screen, 0, y+1, plain, "q: quit")
	}
	drawText(screen, 0, y+2, tcell.StyleDefault.Foreground(tcell.ColorGray),
		"arrows/wasd/hjkl move  space shuffle  r restart  m menu  q quit")

	screen.Show()
}
