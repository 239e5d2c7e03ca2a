package results

import (
	"context"

	"github.com/mcoot/invisiblewalls/internal/model"
)

// Verdicts shown on the result screen
const (
	VerdictPerfect      = "Perfect Score!"
	VerdictPassed       = "Assessment Passed!"
	VerdictFailed       = "Assessment Failed"
	VerdictRoundCleared = "Round Cleared!"
	VerdictRoundFailed  = "Round Failed"
)

// SessionGetter loads sessions by ID
type SessionGetter interface {
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
}

// Service summarises sessions for the result screen
type Service struct {
	sessions SessionGetter
}

// New creates a new results Service
func New(sessions SessionGetter) *Service {
	return &Service{
		sessions: sessions,
	}
}

// Result loads a session and summarises it
func (s *Service) Result(ctx context.Context, id model.SessionID) (*model.SessionResult, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return Summarize(session), nil
}

// Summarize totals a session's history and grades it. A campaign passes
// with at least half its rounds won (rounded up) and is perfect with all
// of them; a practice session passes only if its round was won. The
// verdict is left empty until the session has finished.
func Summarize(session *model.Session) *model.SessionResult {
	result := &model.SessionResult{
		SessionID:    session.ID,
		Mode:         session.Mode,
		Status:       session.Status,
		RoundsWon:    session.RoundsWon,
		RoundsPlayed: len(session.History),
		RoundCount:   session.RoundCount,
	}

	for _, h := range session.History {
		result.TotalMoves += h.Moves
		result.TotalBumps += h.Bumps
		result.TotalTime += h.TimeSpent
	}

	if session.Mode == model.ModePractice {
		result.RoundCount = 1
	}
	result.PassThreshold = (result.RoundCount + 1) / 2
	result.Passed = result.RoundCount > 0 && result.RoundsWon >= result.PassThreshold
	result.Perfect = result.RoundCount > 0 && result.RoundsWon >= result.RoundCount

	if session.Status == model.StatusFinished {
		result.Verdict = verdict(result)
	}
	return result
}

func verdict(r *model.SessionResult) string {
	if r.Mode == model.ModePractice {
		if r.Passed {
			return VerdictRoundCleared
		}
		return VerdictRoundFailed
	}
	switch {
	case r.Perfect:
		return VerdictPerfect
	case r.Passed:
		return VerdictPassed
	default:
		return VerdictFailed
	}
}
