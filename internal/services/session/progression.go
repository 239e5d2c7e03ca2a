package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/invisiblewalls/internal/model"
)

// initializeRound deals a fresh board for s.Round.Index at the session's
// difficulty. Earlier deferred work is invalidated by the epoch change.
func (c *Controller) initializeRound(s *model.Session) error {
	rc, err := c.rounds.Table().Round(s.Round.Index)
	if err != nil {
		return err
	}

	layout := c.generator.Generate(rc.Size, s.Difficulty, rc.KeysRequired)

	s.Epoch++
	s.Round = model.RoundState{
		Index:        s.Round.Index,
		GridSize:     rc.Size,
		KeysRequired: rc.KeysRequired,
		TimeLeft:     c.cfg.RoundTimeLimit,
	}
	s.Round.ApplyLayout(layout)

	c.tasks.cancel(s.ID)
	c.scheduleTick(s)

	c.logger.Debug("round initialized",
		slog.String("session_id", string(s.ID)),
		slog.Int("round", s.Round.Index),
		slog.Int("grid_size", rc.Size),
		slog.Int("hazards", len(layout.Hazards)),
	)
	return nil
}

// advance records the finished round and moves on. It does nothing unless
// the round has ended in a win or a timeout.
func (c *Controller) advance(s *model.Session, won bool) model.EventType {
	if s.Status != model.StatusTransition && s.Status != model.StatusTimeout {
		return ""
	}
	c.tasks.cancel(s.ID)

	result := model.ResultLoss
	if won {
		result = model.ResultWin
		s.RoundsWon = min(s.RoundsWon+1, s.RoundCount)
	}
	r := &s.Round
	s.History = append(s.History, model.RoundHistoryEntry{
		Round:     r.Index,
		GridSize:  r.GridSize,
		PlayerPos: r.PlayerPos,
		DoorPos:   r.DoorPos,
		KeyPos:    append([]model.Position{}, r.KeyPos...),
		Hazards:   append([]model.Position{}, r.Hazards...),
		Result:    result,
		Moves:     r.Moves,
		Bumps:     r.Bumps,
		TimeSpent: c.cfg.RoundTimeLimit - r.TimeLeft,
	})

	c.logger.Info("round finished",
		slog.String("session_id", string(s.ID)),
		slog.Int("round", r.Index),
		slog.String("result", string(result)),
		slog.Int("moves", r.Moves),
	)

	if s.Mode == model.ModePractice {
		return c.finish(s)
	}

	next := r.Index + 1
	if next >= s.RoundCount {
		return c.finish(s)
	}

	s.Round.Index = next
	if err := c.initializeRound(s); err != nil {
		c.logger.Error("failed to deal next round",
			slog.String("session_id", string(s.ID)),
			slog.Int("round", next),
			slog.Any("error", err),
		)
		return c.finish(s)
	}
	s.Status = model.StatusPlaying
	return model.EventRoundStarted
}

func (c *Controller) finish(s *model.Session) model.EventType {
	s.Status = model.StatusFinished
	c.logger.Info("session finished",
		slog.String("session_id", string(s.ID)),
		slog.Int("rounds_won", s.RoundsWon),
		slog.Int("round_count", s.RoundCount),
	)
	return model.EventSessionFinished
}

func (c *Controller) scheduleTick(s *model.Session) {
	id, epoch := s.ID, s.Epoch
	c.tasks.schedule(id, c.cfg.TickInterval, func() {
		c.runTask(id, epoch, c.tick)
	})
}

func (c *Controller) scheduleAdvance(s *model.Session, won bool, delay time.Duration) {
	id, epoch := s.ID, s.Epoch
	c.tasks.schedule(id, delay, func() {
		c.runTask(id, epoch, func(s *model.Session) model.EventType {
			return c.advance(s, won)
		})
	})
}

func (c *Controller) scheduleHitClear(s *model.Session, seq int) {
	id, epoch := s.ID, s.Epoch
	c.tasks.schedule(id, c.cfg.HitHighlightDuration, func() {
		c.runTask(id, epoch, func(s *model.Session) model.EventType {
			if s.Round.LastHit == nil || s.Round.LastHit.Seq != seq {
				return ""
			}
			s.Round.LastHit = nil
			return model.EventHitCleared
		})
	})
}

func (c *Controller) tick(s *model.Session) model.EventType {
	if s.Status != model.StatusPlaying {
		return ""
	}
	if s.Round.TimeLeft <= c.cfg.TickInterval {
		s.Round.TimeLeft = 0
		s.Status = model.StatusTimeout
		c.scheduleAdvance(s, false, c.cfg.TimeoutAdvanceDelay)
		c.logger.Info("round timed out",
			slog.String("session_id", string(s.ID)),
			slog.Int("round", s.Round.Index),
		)
		return model.EventRoundTimeout
	}
	s.Round.TimeLeft -= c.cfg.TickInterval
	c.scheduleTick(s)
	return model.EventTick
}

// runTask applies deferred work to the latest state of a session, provided
// the round it was scheduled for is still the current one
func (c *Controller) runTask(id model.SessionID, epoch int, fn func(s *model.Session) model.EventType) {
	_, err := c.mutate(context.Background(), id, func(s *model.Session) (model.EventType, error) {
		if s.Epoch != epoch {
			return "", nil
		}
		return fn(s), nil
	})
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, model.ErrSessionNotFound) {
			level = slog.LevelDebug
		}
		c.logger.Log(context.Background(), level, "deferred session task failed",
			slog.String("session_id", string(id)),
			slog.Any("error", err),
		)
	}
}
