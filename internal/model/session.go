package model

import (
	"fmt"
	"time"
)

// SessionID uniquely identifies a play session
type SessionID string

// Status is the lifecycle state of a session
type Status string

const (
	StatusIdle       Status = "idle"       // pre-game, at the menu
	StatusPlaying    Status = "playing"    // round in progress
	StatusTransition Status = "transition" // door reached, next round pending
	StatusTimeout    Status = "timeout"    // time expired, advance pending
	StatusFinished   Status = "finished"   // session over
)

// Mode selects campaign or single-round practice play
type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModePractice Mode = "practice"
)

// DefaultMode is the mode a session returns to at the menu
const DefaultMode = ModeCampaign

// ParseMode converts a string into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCampaign, ModePractice:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Result is the outcome of a finished round
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// MoveOutcome describes what a move command did
type MoveOutcome string

const (
	MoveIgnored      MoveOutcome = "ignored"        // not playing
	MoveBlocked      MoveOutcome = "blocked"        // off the grid
	MoveMoved        MoveOutcome = "moved"          // stepped onto a free cell
	MoveKeyCollected MoveOutcome = "key_collected"  // stepped onto a key
	MoveBumped       MoveOutcome = "bumped"         // walked into a hazard
	MoveLockedDoor   MoveOutcome = "at_locked_door" // on the door without enough keys
	MoveWon          MoveOutcome = "won"            // on the door with all keys
)

// HitRecord is the transient marker left by the latest hazard collision
type HitRecord struct {
	Pos  Position
	Side Side
	Seq  int
}

// RoundState is the live state of the round being played
type RoundState struct {
	Index        int
	GridSize     int
	KeysRequired int

	PlayerPos Position
	StartPos  Position
	DoorPos   Position

	KeyPos        []Position // keys still on the board
	InitialKeyPos []Position // keys as laid out, restored on collision
	CollectedKeys int

	Hazards  []Position
	Revealed []Position // hazards hit at least once
	Visited  []Position // path trace since the last reset
	LastHit  *HitRecord

	TimeLeft time.Duration
	Moves    int
	Bumps    int
	HitSeq   int
}

// IsHazard reports whether p is a hazard cell
func (r *RoundState) IsHazard(p Position) bool {
	return ContainsPosition(r.Hazards, p)
}

// HasKeys reports whether enough keys are held to open the door
func (r *RoundState) HasKeys() bool {
	return r.CollectedKeys >= r.KeysRequired
}

// ApplyLayout replaces the board with a freshly generated layout
func (r *RoundState) ApplyLayout(l Layout) {
	r.StartPos = l.StartPos
	r.PlayerPos = l.StartPos
	r.DoorPos = l.DoorPos
	r.KeyPos = append([]Position{}, l.KeyPos...)
	r.InitialKeyPos = append([]Position{}, l.KeyPos...)
	r.Hazards = append([]Position{}, l.Hazards...)
	r.Revealed = []Position{}
	r.Visited = []Position{}
	r.LastHit = nil
}

// RoundHistoryEntry is recorded once, when a round ends
type RoundHistoryEntry struct {
	Round     int
	GridSize  int
	PlayerPos Position
	DoorPos   Position
	KeyPos    []Position
	Hazards   []Position
	Result    Result
	Moves     int
	Bumps     int
	TimeSpent time.Duration
}

// Session is a campaign or practice run spanning one or more rounds
type Session struct {
	ID         SessionID
	PlayerID   PlayerID
	Mode       Mode
	Status     Status
	Difficulty Difficulty
	RoundsWon  int
	RoundCount int
	History    []RoundHistoryEntry
	Round      RoundState

	// Epoch changes whenever a new round layout is dealt or the session is
	// reset. Deferred work scheduled under an older epoch is discarded.
	Epoch int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether a round is being played or resolved
func (s *Session) IsActive() bool {
	return s.Status == StatusPlaying || s.Status == StatusTransition || s.Status == StatusTimeout
}

// Clone returns a deep copy that shares no slices with s
func (s *Session) Clone() *Session {
	c := *s
	c.History = make([]RoundHistoryEntry, len(s.History))
	for i, h := range s.History {
		h.KeyPos = clonePositions(h.KeyPos)
		h.Hazards = clonePositions(h.Hazards)
		c.History[i] = h
	}
	c.Round.KeyPos = clonePositions(s.Round.KeyPos)
	c.Round.InitialKeyPos = clonePositions(s.Round.InitialKeyPos)
	c.Round.Hazards = clonePositions(s.Round.Hazards)
	c.Round.Revealed = clonePositions(s.Round.Revealed)
	c.Round.Visited = clonePositions(s.Round.Visited)
	if s.Round.LastHit != nil {
		hit := *s.Round.LastHit
		c.Round.LastHit = &hit
	}
	return &c
}

func clonePositions(ps []Position) []Position {
	if ps == nil {
		return nil
	}
	out := make([]Position, len(ps))
	copy(out, ps)
	return out
}
