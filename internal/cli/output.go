package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Session:
		o.printSession(v)
	case []SessionSummary:
		o.printSessionList(v)
	case MoveResult:
		o.printMoveResult(v)
	case Result:
		o.printResult(v)
	case RoundTable:
		o.printRoundTable(v)
	case AutoplayResult:
		o.printAutoplayResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// Position is a board cell
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Hit marks the latest hazard collision
type Hit struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Side string `json:"side"`
	Seq  int    `json:"seq"`
}

// Round response type
type Round struct {
	Index         int        `json:"index"`
	GridSize      int        `json:"grid_size"`
	KeysRequired  int        `json:"keys_required"`
	CollectedKeys int        `json:"collected_keys"`
	DoorOpen      bool       `json:"door_open"`
	PlayerPos     Position   `json:"player_pos"`
	StartPos      Position   `json:"start_pos"`
	DoorPos       Position   `json:"door_pos"`
	Keys          []Position `json:"keys"`
	Hazards       []Position `json:"hazards,omitempty"`
	Revealed      []Position `json:"revealed"`
	Visited       []Position `json:"visited"`
	LastHit       *Hit       `json:"last_hit"`
	TimeLeft      int        `json:"time_left"`
	Moves         int        `json:"moves"`
	Bumps         int        `json:"bumps"`
}

// HistoryEntry is a finished round
type HistoryEntry struct {
	Round     int    `json:"round"`
	GridSize  int    `json:"grid_size"`
	Result    string `json:"result"`
	Moves     int    `json:"moves"`
	Bumps     int    `json:"bumps"`
	TimeSpent int    `json:"time_spent"`
}

// Session response type
type Session struct {
	ID         string         `json:"id"`
	PlayerID   string         `json:"player_id"`
	Mode       string         `json:"mode"`
	Status     string         `json:"status"`
	Difficulty string         `json:"difficulty"`
	RoundsWon  int            `json:"rounds_won"`
	RoundCount int            `json:"round_count"`
	Round      Round          `json:"round"`
	History    []HistoryEntry `json:"history"`
}

// SessionSummary is a session in the list response
type SessionSummary struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	Difficulty string    `json:"difficulty"`
	Round      int       `json:"round"`
	RoundsWon  int       `json:"rounds_won"`
	RoundCount int       `json:"round_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MoveResult response type
type MoveResult struct {
	Outcome string  `json:"outcome"`
	Session Session `json:"session"`
}

// Result response type
type Result struct {
	SessionID     string `json:"session_id"`
	Mode          string `json:"mode"`
	Status        string `json:"status"`
	RoundsWon     int    `json:"rounds_won"`
	RoundsPlayed  int    `json:"rounds_played"`
	RoundCount    int    `json:"round_count"`
	PassThreshold int    `json:"pass_threshold"`
	Passed        bool   `json:"passed"`
	Perfect       bool   `json:"perfect"`
	TotalMoves    int    `json:"total_moves"`
	TotalBumps    int    `json:"total_bumps"`
	TotalTime     int    `json:"total_time"`
	Verdict       string `json:"verdict,omitempty"`
}

// RoundConfig response type
type RoundConfig struct {
	Index        int `json:"index"`
	Size         int `json:"size"`
	KeysRequired int `json:"keys_required"`
}

// RoundTable response type
type RoundTable struct {
	Rounds        []RoundConfig `json:"rounds"`
	PassThreshold int           `json:"pass_threshold"`
}

// BotAction is one autoplay move
type BotAction struct {
	Dx      int      `json:"dx"`
	Dy      int      `json:"dy"`
	Outcome string   `json:"outcome"`
	Pos     Position `json:"pos"`
}

// AutoplayResult response type
type AutoplayResult struct {
	Strategy string      `json:"strategy"`
	Actions  []BotAction `json:"actions"`
	Session  Session     `json:"session"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Board cell kinds, in drawing priority order
type cellKind int

const (
	cellEmpty cellKind = iota
	cellVisited
	cellHazard   // hidden hazard, shown once the round is over
	cellRevealed // hazard the player has walked into
	cellHit      // the latest collision
	cellKey
	cellDoor
	cellDoorOpen
	cellPlayer
)

var cellGlyphs = map[cellKind]rune{
	cellEmpty:    '.',
	cellVisited:  ':',
	cellHazard:   '#',
	cellRevealed: 'X',
	cellHit:      '!',
	cellKey:      'k',
	cellDoor:     'D',
	cellDoorOpen: 'O',
	cellPlayer:   '@',
}

var cellStyles = map[cellKind]color.Style{
	cellEmpty:    {color.FgGray},
	cellVisited:  {color.FgCyan},
	cellHazard:   {color.FgRed},
	cellRevealed: {color.FgRed, color.OpBold},
	cellHit:      {color.FgWhite, color.BgRed, color.OpBold},
	cellKey:      {color.FgBlue, color.OpBold},
	cellDoor:     {color.FgYellow, color.OpBold},
	cellDoorOpen: {color.FgGreen, color.OpBold},
	cellPlayer:   {color.FgGreen, color.BgBlack, color.OpBold},
}

// boardCells lays out the round as a grid indexed [y][x]
func boardCells(r Round) [][]cellKind {
	if r.GridSize <= 0 {
		return nil
	}
	grid := make([][]cellKind, r.GridSize)
	for y := range grid {
		grid[y] = make([]cellKind, r.GridSize)
	}

	set := func(p Position, kind cellKind) {
		if p.X < 0 || p.Y < 0 || p.X >= r.GridSize || p.Y >= r.GridSize {
			return
		}
		if kind > grid[p.Y][p.X] {
			grid[p.Y][p.X] = kind
		}
	}

	for _, p := range r.Visited {
		set(p, cellVisited)
	}
	for _, p := range r.Hazards {
		set(p, cellHazard)
	}
	for _, p := range r.Revealed {
		set(p, cellRevealed)
	}
	if r.LastHit != nil {
		set(Position{X: r.LastHit.X, Y: r.LastHit.Y}, cellHit)
	}
	for _, p := range r.Keys {
		set(p, cellKey)
	}
	if r.DoorOpen {
		set(r.DoorPos, cellDoorOpen)
	} else {
		set(r.DoorPos, cellDoor)
	}
	set(r.PlayerPos, cellPlayer)
	return grid
}

// renderBoard draws the round as coloured text lines
func renderBoard(r Round) []string {
	grid := boardCells(r)
	lines := make([]string, 0, len(grid)+2)
	border := "+" + strings.Repeat("-", len(grid)*2+1) + "+"

	lines = append(lines, border)
	for _, row := range grid {
		var b strings.Builder
		b.WriteString("| ")
		for _, kind := range row {
			b.WriteString(cellStyles[kind].Sprint(string(cellGlyphs[kind])))
			b.WriteString(" ")
		}
		b.WriteString("|")
		lines = append(lines, b.String())
	}
	lines = append(lines, border)
	return lines
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Mode: %s  Status: %s  Difficulty: %s\n", s.Mode, statusStyle(s.Status).Sprint(s.Status), s.Difficulty)

	if s.Status != "idle" {
		r := s.Round
		fmt.Printf("Round: %d/%d (%dx%d)  Keys: %d/%d  Time: %ds  Moves: %d  Bumps: %d\n",
			r.Index+1, s.RoundCount, r.GridSize, r.GridSize,
			r.CollectedKeys, r.KeysRequired, r.TimeLeft, r.Moves, r.Bumps)
		for _, line := range renderBoard(r) {
			fmt.Println(line)
		}
	}

	if len(s.History) > 0 {
		fmt.Println("History:")
		for _, h := range s.History {
			fmt.Printf("  Round %d (%dx%d): %s - %d moves, %d bumps, %ds\n",
				h.Round+1, h.GridSize, h.GridSize, resultStyle(h.Result).Sprint(h.Result), h.Moves, h.Bumps, h.TimeSpent)
		}
	}
}

func (o *Output) printSessionList(list []SessionSummary) {
	if len(list) == 0 {
		fmt.Println("No sessions")
		return
	}
	for _, s := range list {
		fmt.Printf("%s  %-8s  %-10s  %-6s  round %d/%d  won %d\n",
			s.ID, s.Mode, s.Status, s.Difficulty, s.Round+1, s.RoundCount, s.RoundsWon)
	}
}

func (o *Output) printMoveResult(m MoveResult) {
	fmt.Printf("Outcome: %s\n", outcomeStyle(m.Outcome).Sprint(m.Outcome))
	o.printSession(m.Session)
}

func (o *Output) printResult(r Result) {
	fmt.Printf("Session: %s (%s)\n", r.SessionID, r.Mode)
	if r.Verdict != "" {
		style := color.Style{color.FgRed, color.OpBold}
		if r.Passed {
			style = color.Style{color.FgGreen, color.OpBold}
		}
		fmt.Println(style.Sprint(r.Verdict))
	} else {
		fmt.Printf("Status: %s (not finished)\n", r.Status)
	}
	fmt.Printf("Rounds won: %d/%d (pass at %d, %d played)\n", r.RoundsWon, r.RoundCount, r.PassThreshold, r.RoundsPlayed)
	fmt.Printf("Moves: %d  Bumps: %d  Time: %ds\n", r.TotalMoves, r.TotalBumps, r.TotalTime)
}

func (o *Output) printRoundTable(t RoundTable) {
	for _, r := range t.Rounds {
		fmt.Printf("Round %d: %dx%d, %d key(s)\n", r.Index+1, r.Size, r.Size, r.KeysRequired)
	}
	fmt.Printf("Pass threshold: %d\n", t.PassThreshold)
}

func (o *Output) printAutoplayResult(a AutoplayResult) {
	bumps := 0
	for _, act := range a.Actions {
		if act.Outcome == "bumped" {
			bumps++
		}
	}
	fmt.Printf("Strategy: %s  Moves: %d  Bumps: %d\n", a.Strategy, len(a.Actions), bumps)
	if n := len(a.Actions); n > 0 {
		last := a.Actions[n-1]
		fmt.Printf("Last move: %s at (%d,%d)\n", outcomeStyle(last.Outcome).Sprint(last.Outcome), last.Pos.X, last.Pos.Y)
	}
	o.printSession(a.Session)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func statusStyle(status string) color.Style {
	switch status {
	case "playing":
		return color.Style{color.FgGreen}
	case "transition":
		return color.Style{color.FgCyan}
	case "timeout":
		return color.Style{color.FgRed}
	case "finished":
		return color.Style{color.FgMagenta, color.OpBold}
	default:
		return color.Style{color.FgGray}
	}
}

func resultStyle(result string) color.Style {
	if result == "win" {
		return color.Style{color.FgGreen}
	}
	return color.Style{color.FgRed}
}

func outcomeStyle(outcome string) color.Style {
	switch outcome {
	case "won", "key_collected":
		return color.Style{color.FgGreen, color.OpBold}
	case "bumped":
		return color.Style{color.FgRed, color.OpBold}
	case "at_locked_door":
		return color.Style{color.FgYellow}
	default:
		return color.Style{color.FgGray}
	}
}
