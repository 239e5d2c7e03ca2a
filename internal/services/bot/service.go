package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/session"
)

const (
	// DefaultMaxMoves is the move budget used when a caller passes none
	DefaultMaxMoves = 500
	// MaxMovesLimit is a safety limit for a single Play call
	MaxMovesLimit = 5000
)

// Action is a single move made by the bot
type Action struct {
	Dx      int
	Dy      int
	Outcome model.MoveOutcome
	Pos     model.Position // player position after the move
}

// Controller is the part of the session controller the bot drives
type Controller interface {
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	Move(ctx context.Context, id model.SessionID, dx, dy int) (*session.MoveResult, error)
}

// Service plays rounds on a player's behalf
type Service struct {
	controller Controller
	strategies map[string]Strategy
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(controller Controller, strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		controller: controller,
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// Strategies returns the names of the registered strategies
func (s *Service) Strategies() []string {
	names := make([]string, 0, len(s.strategies))
	for _, name := range model.ValidBotStrategies() {
		if _, ok := s.strategies[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Play moves the player until the round stops being played or the move
// budget runs out. It returns every move it made.
func (s *Service) Play(ctx context.Context, id model.SessionID, strategy string, maxMoves int) ([]Action, error) {
	if strategy == "" {
		strategy = model.DefaultBotStrategy
	}
	st, ok := s.strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownStrategy, strategy)
	}
	if maxMoves <= 0 {
		maxMoves = DefaultMaxMoves
	}
	maxMoves = min(maxMoves, MaxMovesLimit)

	current, err := s.controller.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	actions := []Action{}
	for range maxMoves {
		if err := ctx.Err(); err != nil {
			return actions, err
		}
		if current.Status != model.StatusPlaying {
			break
		}

		dx, dy := st.NextMove(ViewOf(current))
		result, err := s.controller.Move(ctx, id, dx, dy)
		if err != nil {
			return actions, err
		}
		current = result.Session

		actions = append(actions, Action{
			Dx:      dx,
			Dy:      dy,
			Outcome: result.Outcome,
			Pos:     current.Round.PlayerPos,
		})
		if result.Outcome == model.MoveIgnored {
			break
		}
	}

	s.logger.Info("autoplay finished",
		slog.String("session_id", string(id)),
		slog.String("strategy", strategy),
		slog.Int("moves", len(actions)),
		slog.String("status", string(current.Status)),
	)
	return actions, nil
}
