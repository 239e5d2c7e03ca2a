package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/invisiblewalls/internal/model"
)

// MoveResult is the outcome of a move along with the resulting snapshot
type MoveResult struct {
	Session *model.Session
	Outcome model.MoveOutcome
}

// Move steps the player one cell. Moves made outside of play or off the
// grid are ignored and leave the session untouched.
func (c *Controller) Move(ctx context.Context, id model.SessionID, dx, dy int) (*MoveResult, error) {
	if !model.ValidDelta(dx, dy) {
		return nil, fmt.Errorf("%w: (%d, %d)", model.ErrInvalidMove, dx, dy)
	}

	outcome := model.MoveIgnored
	session, err := c.mutate(ctx, id, func(s *model.Session) (model.EventType, error) {
		var event model.EventType
		outcome, event = c.applyMove(s, dx, dy)
		return event, nil
	})
	if err != nil {
		return nil, err
	}
	return &MoveResult{Session: session, Outcome: outcome}, nil
}

func (c *Controller) applyMove(s *model.Session, dx, dy int) (model.MoveOutcome, model.EventType) {
	if s.Status != model.StatusPlaying {
		return model.MoveIgnored, ""
	}

	r := &s.Round
	target := r.PlayerPos.Add(dx, dy)
	if !target.InBounds(r.GridSize) {
		return model.MoveBlocked, ""
	}

	if r.IsHazard(target) {
		r.Moves++
		r.Bumps++
		r.HitSeq++
		r.PlayerPos = r.StartPos
		r.Visited = []model.Position{}
		if !model.ContainsPosition(r.Revealed, target) {
			r.Revealed = append(r.Revealed, target)
		}
		r.LastHit = &model.HitRecord{Pos: target, Side: model.SideForDelta(dx, dy), Seq: r.HitSeq}
		r.CollectedKeys = 0
		r.KeyPos = append([]model.Position{}, r.InitialKeyPos...)
		c.scheduleHitClear(s, r.HitSeq)

		c.logger.Debug("hazard hit",
			slog.String("session_id", string(s.ID)),
			slog.Int("x", target.X),
			slog.Int("y", target.Y),
		)
		return model.MoveBumped, model.EventHazardHit
	}

	r.Visited = append(r.Visited, r.PlayerPos)
	r.PlayerPos = target

	outcome, event := model.MoveMoved, model.EventPlayerMoved
	if model.ContainsPosition(r.KeyPos, target) {
		r.KeyPos = model.RemovePosition(r.KeyPos, target)
		r.CollectedKeys++
		outcome, event = model.MoveKeyCollected, model.EventKeyCollected
	}

	// The winning step is not counted as a move
	if target == r.DoorPos && r.HasKeys() {
		s.Status = model.StatusTransition
		c.scheduleAdvance(s, true, c.cfg.WinAdvanceDelay)
		c.logger.Info("round won",
			slog.String("session_id", string(s.ID)),
			slog.Int("round", r.Index),
		)
		return model.MoveWon, model.EventRoundWon
	}

	r.Moves++
	if target == r.DoorPos {
		return model.MoveLockedDoor, model.EventPlayerMoved
	}
	return outcome, event
}

// Shuffle deals a new board for the current round using the keys still
// missing. Collected keys and the clock carry over.
func (c *Controller) Shuffle(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.mutate(ctx, id, func(s *model.Session) (model.EventType, error) {
		if s.Status != model.StatusPlaying {
			return "", nil
		}
		r := &s.Round
		remaining := max(0, r.KeysRequired-r.CollectedKeys)
		layout := c.generator.Generate(r.GridSize, s.Difficulty, remaining)
		r.ApplyLayout(layout)

		c.logger.Debug("board shuffled",
			slog.String("session_id", string(s.ID)),
			slog.Int("keys_remaining", remaining),
		)
		return model.EventShuffled, nil
	})
}
