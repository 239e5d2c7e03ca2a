package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Stream live events from a session",
		Long: `Connect to the session's SSE endpoint and stream events in real-time.

The stream opens with a snapshot of the session. Events include:
  - round_started: A new round was laid out
  - player_moved: The player stepped to a new cell
  - key_collected: A key was picked up
  - hazard_hit: The player walked into a hazard
  - hit_cleared: The hit highlight faded
  - round_won: The player reached the open door
  - round_timeout: The round clock ran out
  - tick: One second passed
  - session_finished: The game is over

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

// eventPayload is the data carried by every session event
type eventPayload struct {
	Type    string  `json:"type"`
	Session Session `json:"session"`
}

func streamEvents(sessionID string, jsonOutput bool) error {
	// SSE is on the live router, not the API router
	url, err := client.LiveURL("/sessions/"+sessionID+"/events", false)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Set up cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	req = req.WithContext(ctx)

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Connected to session %s\n", sessionID)
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				printEvent(currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	fmt.Printf("[%s] %s: %s\n", timestamp, eventStyle(event).Sprint(event), describeEvent(data))
}

// describeEvent summarises an event payload on one line
func describeEvent(data string) string {
	var payload eventPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil || payload.Session.ID == "" {
		display := strings.ReplaceAll(data, "\n", " ")
		if len(display) > 100 {
			display = display[:100] + "..."
		}
		return display
	}

	s := payload.Session
	if s.Status == "idle" {
		return fmt.Sprintf("%s at menu (%s)", s.Mode, s.Difficulty)
	}
	r := s.Round
	return fmt.Sprintf("%s round %d/%d pos (%d,%d) keys %d/%d time %ds moves %d bumps %d",
		s.Status, r.Index+1, s.RoundCount, r.PlayerPos.X, r.PlayerPos.Y,
		r.CollectedKeys, r.KeysRequired, r.TimeLeft, r.Moves, r.Bumps)
}

func eventStyle(event string) color.Style {
	switch event {
	case "hazard_hit", "round_timeout":
		return color.Style{color.FgRed, color.OpBold}
	case "key_collected", "round_won":
		return color.Style{color.FgGreen, color.OpBold}
	case "session_finished", "snapshot":
		return color.Style{color.FgMagenta}
	case "tick":
		return color.Style{color.FgGray}
	default:
		return color.Style{color.FgCyan}
	}
}
