package response

import (
	"time"

	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/auth"
	"github.com/mcoot/invisiblewalls/internal/services/bot"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a login
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// Position is a board cell
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PositionFromModel converts a model.Position
func PositionFromModel(p model.Position) Position {
	return Position{X: p.X, Y: p.Y}
}

// PositionsFromModel converts a slice of positions, never returning nil
func PositionsFromModel(ps []model.Position) []Position {
	out := make([]Position, len(ps))
	for i, p := range ps {
		out[i] = PositionFromModel(p)
	}
	return out
}

// Hit is the marker left by the latest hazard collision
type Hit struct {
	Position
	Side string `json:"side"`
	Seq  int    `json:"seq"`
}

// Round is the live round of a session
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
	TimeLeft      int        `json:"time_left"` // whole seconds
	Moves         int        `json:"moves"`
	Bumps         int        `json:"bumps"`
}

// HistoryEntry is a finished round
type HistoryEntry struct {
	Round     int        `json:"round"`
	GridSize  int        `json:"grid_size"`
	Result    string     `json:"result"`
	PlayerPos Position   `json:"player_pos"`
	DoorPos   Position   `json:"door_pos"`
	Keys      []Position `json:"keys"`
	Hazards   []Position `json:"hazards"`
	Moves     int        `json:"moves"`
	Bumps     int        `json:"bumps"`
	TimeSpent int        `json:"time_spent"` // whole seconds
}

// Session represents a play session in API responses
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
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SessionFromModel converts a model.Session. Hazard positions stay hidden
// while the round is being played; revealed hazards are always included.
func SessionFromModel(s *model.Session) Session {
	r := s.Round
	round := Round{
		Index:         r.Index,
		GridSize:      r.GridSize,
		KeysRequired:  r.KeysRequired,
		CollectedKeys: r.CollectedKeys,
		DoorOpen:      r.GridSize > 0 && r.HasKeys(),
		PlayerPos:     PositionFromModel(r.PlayerPos),
		StartPos:      PositionFromModel(r.StartPos),
		DoorPos:       PositionFromModel(r.DoorPos),
		Keys:          PositionsFromModel(r.KeyPos),
		Revealed:      PositionsFromModel(r.Revealed),
		Visited:       PositionsFromModel(r.Visited),
		TimeLeft:      int(r.TimeLeft / time.Second),
		Moves:         r.Moves,
		Bumps:         r.Bumps,
	}
	if s.Status != model.StatusPlaying {
		round.Hazards = PositionsFromModel(r.Hazards)
	}
	if r.LastHit != nil {
		round.LastHit = &Hit{
			Position: PositionFromModel(r.LastHit.Pos),
			Side:     string(r.LastHit.Side),
			Seq:      r.LastHit.Seq,
		}
	}

	history := make([]HistoryEntry, len(s.History))
	for i, h := range s.History {
		history[i] = HistoryEntry{
			Round:     h.Round,
			GridSize:  h.GridSize,
			Result:    string(h.Result),
			PlayerPos: PositionFromModel(h.PlayerPos),
			DoorPos:   PositionFromModel(h.DoorPos),
			Keys:      PositionsFromModel(h.KeyPos),
			Hazards:   PositionsFromModel(h.Hazards),
			Moves:     h.Moves,
			Bumps:     h.Bumps,
			TimeSpent: int(h.TimeSpent / time.Second),
		}
	}

	return Session{
		ID:         string(s.ID),
		PlayerID:   string(s.PlayerID),
		Mode:       string(s.Mode),
		Status:     string(s.Status),
		Difficulty: string(s.Difficulty),
		RoundsWon:  s.RoundsWon,
		RoundCount: s.RoundCount,
		Round:      round,
		History:    history,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// SessionSummary is a session in list responses
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

// SessionSummariesFromModel converts a list of sessions
func SessionSummariesFromModel(sessions []*model.Session) []SessionSummary {
	out := make([]SessionSummary, len(sessions))
	for i, s := range sessions {
		out[i] = SessionSummary{
			ID:         string(s.ID),
			Mode:       string(s.Mode),
			Status:     string(s.Status),
			Difficulty: string(s.Difficulty),
			Round:      s.Round.Index,
			RoundsWon:  s.RoundsWon,
			RoundCount: s.RoundCount,
			UpdatedAt:  s.UpdatedAt,
		}
	}
	return out
}

// MoveResponse is the response after a move
type MoveResponse struct {
	Outcome string  `json:"outcome"`
	Session Session `json:"session"`
}

// Result is a session's result summary
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
	TotalTime     int    `json:"total_time"` // whole seconds
	Verdict       string `json:"verdict,omitempty"`
}

// ResultFromModel converts a model.SessionResult
func ResultFromModel(r *model.SessionResult) Result {
	return Result{
		SessionID:     string(r.SessionID),
		Mode:          string(r.Mode),
		Status:        string(r.Status),
		RoundsWon:     r.RoundsWon,
		RoundsPlayed:  r.RoundsPlayed,
		RoundCount:    r.RoundCount,
		PassThreshold: r.PassThreshold,
		Passed:        r.Passed,
		Perfect:       r.Perfect,
		TotalMoves:    r.TotalMoves,
		TotalBumps:    r.TotalBumps,
		TotalTime:     int(r.TotalTime / time.Second),
		Verdict:       r.Verdict,
	}
}

// RoundConfig is one entry of the round table
type RoundConfig struct {
	Index        int `json:"index"`
	Size         int `json:"size"`
	KeysRequired int `json:"keys_required"`
}

// RoundTable is the campaign's list of rounds
type RoundTable struct {
	Rounds        []RoundConfig `json:"rounds"`
	PassThreshold int           `json:"pass_threshold"`
}

// RoundTableFromModel converts a model.RoundTable
func RoundTableFromModel(t model.RoundTable) RoundTable {
	rounds := make([]RoundConfig, len(t))
	for i, rc := range t {
		rounds[i] = RoundConfig{Index: i, Size: rc.Size, KeysRequired: rc.KeysRequired}
	}
	return RoundTable{Rounds: rounds, PassThreshold: t.PassThreshold()}
}

// BotAction is a single move made by the autoplayer
type BotAction struct {
	Dx      int      `json:"dx"`
	Dy      int      `json:"dy"`
	Outcome string   `json:"outcome"`
	Pos     Position `json:"pos"`
}

// AutoplayResponse is the response after letting a bot play
type AutoplayResponse struct {
	Strategy string      `json:"strategy"`
	Actions  []BotAction `json:"actions"`
	Session  Session     `json:"session"`
}

// AutoplayResponseFromActions builds an AutoplayResponse
func AutoplayResponseFromActions(strategy string, actions []bot.Action, s *model.Session) AutoplayResponse {
	out := make([]BotAction, len(actions))
	for i, a := range actions {
		out[i] = BotAction{
			Dx:      a.Dx,
			Dy:      a.Dy,
			Outcome: string(a.Outcome),
			Pos:     PositionFromModel(a.Pos),
		}
	}
	return AutoplayResponse{
		Strategy: strategy,
		Actions:  out,
		Session:  SessionFromModel(s),
	}
}
