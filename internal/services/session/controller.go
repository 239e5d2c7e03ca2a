package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/invisiblewalls/internal/dependencies/clock"
	"github.com/mcoot/invisiblewalls/internal/dependencies/random"
	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/storage"
)

// SessionIDLength is the length of generated session identifiers
const SessionIDLength = 12

// LayoutGenerator deals new boards
type LayoutGenerator interface {
	Generate(size int, difficulty model.Difficulty, keysRequired int) model.Layout
}

// RoundSource supplies the campaign round table
type RoundSource interface {
	Table() model.RoundTable
}

// Publisher receives an event after every session transition.
// Publish is called with the session lock held and must not block.
type Publisher interface {
	Publish(event model.Event)
}

// Config holds the timing rules of a round
type Config struct {
	RoundTimeLimit       time.Duration
	TickInterval         time.Duration
	HitHighlightDuration time.Duration
	WinAdvanceDelay      time.Duration
	TimeoutAdvanceDelay  time.Duration
}

// DefaultConfig returns the standard round timings
func DefaultConfig() Config {
	return Config{
		RoundTimeLimit:       240 * time.Second,
		TickInterval:         time.Second,
		HitHighlightDuration: time.Second,
		WinAdvanceDelay:      500 * time.Millisecond,
		TimeoutAdvanceDelay:  time.Second,
	}
}

// Controller owns the session state machine. Every mutation of a session
// happens under that session's lock: it loads the latest state, checks the
// guard, mutates, saves and publishes.
type Controller struct {
	storage   storage.Storage
	generator LayoutGenerator
	rounds    RoundSource
	clock     clock.Clock
	random    random.Random
	publisher Publisher
	logger    *slog.Logger
	cfg       Config

	locks sync.Map // model.SessionID -> *sync.Mutex
	tasks *tasks
}

// NewController creates a new session Controller. publisher may be nil.
func NewController(
	store storage.Storage,
	generator LayoutGenerator,
	rounds RoundSource,
	clk clock.Clock,
	rnd random.Random,
	publisher Publisher,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   store,
		generator: generator,
		rounds:    rounds,
		clock:     clk,
		random:    rnd,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "session-controller")),
		cfg:       cfg,
		tasks:     newTasks(clk),
	}
}

// SetPublisher replaces the event publisher
func (c *Controller) SetPublisher(p Publisher) {
	c.publisher = p
}

// Config returns the round timings in use
func (c *Controller) Config() Config {
	return c.cfg
}

// CreateSession opens a new session at the menu
func (c *Controller) CreateSession(ctx context.Context, playerID model.PlayerID) (*model.Session, error) {
	now := c.clock.Now()
	session := &model.Session{
		ID:         model.SessionID(c.random.String(SessionIDLength, random.SessionIDAlphabet)),
		PlayerID:   playerID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Difficulty: model.DefaultDifficulty,
	}
	c.resetToMenu(session)

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("player_id", string(playerID)),
	)
	c.publish(model.EventSessionCreated, session)
	return session, nil
}

// GetSession returns the current snapshot of a session
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// ListSessions returns a player's sessions, newest first
func (c *Controller) ListSessions(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error) {
	return c.storage.ListSessionsForPlayer(ctx, playerID)
}

// StartGame resets the session's progress and deals the given round
func (c *Controller) StartGame(ctx context.Context, id model.SessionID, mode model.Mode, round int) (*model.Session, error) {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	table := c.rounds.Table()
	if _, err := table.Round(round); err != nil {
		return nil, err
	}

	return c.mutate(ctx, id, func(s *model.Session) (model.EventType, error) {
		if err := c.startGame(s, mode, round, len(table)); err != nil {
			return "", err
		}
		return model.EventRoundStarted, nil
	})
}

// Restart replays from the beginning: campaigns restart at the first
// round, practice replays the same round
func (c *Controller) Restart(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.mutate(ctx, id, func(s *model.Session) (model.EventType, error) {
		round := 0
		if s.Mode == model.ModePractice {
			round = s.Round.Index
		}
		if err := c.startGame(s, s.Mode, round, len(c.rounds.Table())); err != nil {
			return "", err
		}
		return model.EventRoundStarted, nil
	})
}

// ChangeDifficulty stores the difficulty. The current board is kept; the
// new level applies on the next shuffle or round.
func (c *Controller) ChangeDifficulty(ctx context.Context, id model.SessionID, level model.Difficulty) (*model.Session, error) {
	if _, err := model.ParseDifficulty(string(level)); err != nil {
		return nil, err
	}
	return c.mutate(ctx, id, func(s *model.Session) (model.EventType, error) {
		if s.Difficulty == level {
			return "", nil
		}
		s.Difficulty = level
		return model.EventDifficultyChanged, nil
	})
}

// GoToMenu abandons any round in progress and returns to the menu
func (c *Controller) GoToMenu(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.mutate(ctx, id, func(s *model.Session) (model.EventType, error) {
		c.tasks.cancel(s.ID)
		c.resetToMenu(s)
		return model.EventReturnedToMenu, nil
	})
}

// AdvanceRound resolves a round that has ended. It only acts while a win
// or timeout is pending, so duplicate or early calls change nothing.
func (c *Controller) AdvanceRound(ctx context.Context, id model.SessionID, won bool) (*model.Session, error) {
	return c.mutate(ctx, id, func(s *model.Session) (model.EventType, error) {
		return c.advance(s, won), nil
	})
}

// Stop cancels all scheduled work. Sessions keep their stored state.
func (c *Controller) Stop() {
	c.tasks.cancelAll()
}

// mutate runs fn against the latest stored state under the session lock.
// fn returns the event to publish, or "" when nothing changed; unchanged
// sessions are not saved.
func (c *Controller) mutate(ctx context.Context, id model.SessionID, fn func(s *model.Session) (model.EventType, error)) (*model.Session, error) {
	unlock := c.lock(id)
	defer unlock()

	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	event, err := fn(session)
	if err != nil {
		return nil, err
	}
	if event == "" {
		return session, nil
	}
	if err := c.save(ctx, session); err != nil {
		return nil, err
	}
	c.publish(event, session)
	return session, nil
}

func (c *Controller) save(ctx context.Context, s *model.Session) error {
	s.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, s); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(s.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (c *Controller) publish(eventType model.EventType, s *model.Session) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		SessionID: s.ID,
		PlayerID:  s.PlayerID,
		Session:   s.Clone(),
	})
}

func (c *Controller) lock(id model.SessionID) func() {
	v, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (c *Controller) startGame(s *model.Session, mode model.Mode, round int, roundCount int) error {
	s.Round.Index = round
	if err := c.initializeRound(s); err != nil {
		return err
	}
	s.Mode = mode
	s.RoundsWon = 0
	s.RoundCount = roundCount
	s.History = []model.RoundHistoryEntry{}
	s.Status = model.StatusPlaying

	c.logger.Info("game started",
		slog.String("session_id", string(s.ID)),
		slog.String("mode", string(mode)),
		slog.Int("round", round),
	)
	return nil
}

func (c *Controller) resetToMenu(s *model.Session) {
	s.Status = model.StatusIdle
	s.Mode = model.DefaultMode
	s.RoundsWon = 0
	s.RoundCount = len(c.rounds.Table())
	s.History = []model.RoundHistoryEntry{}
	s.Round = model.RoundState{
		KeyPos:        []model.Position{},
		InitialKeyPos: []model.Position{},
		Hazards:       []model.Position{},
		Revealed:      []model.Position{},
		Visited:       []model.Position{},
		TimeLeft:      c.cfg.RoundTimeLimit,
	}
	s.Epoch++
}
