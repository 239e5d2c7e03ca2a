package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/invisiblewalls/internal/dependencies/mocks"
	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/bot"
	"github.com/mcoot/invisiblewalls/internal/services/rounds"
	"github.com/mcoot/invisiblewalls/internal/services/session"
	"github.com/mcoot/invisiblewalls/internal/storage/memory"
	"github.com/mcoot/invisiblewalls/internal/testutil"
)

// walledLayout puts a wall across column 2 of a 5x5 board with a single
// gap at the bottom, between the start and the key
type walledLayout struct{}

func (walledLayout) Generate(size int, difficulty model.Difficulty, keys int) model.Layout {
	return model.Layout{
		StartPos: model.Position{X: 0, Y: 0},
		DoorPos:  model.Position{X: 4, Y: 4},
		KeyPos:   []model.Position{{X: 4, Y: 0}},
		Hazards: []model.Position{
			{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3},
		},
	}
}

type ServiceSuite struct {
	suite.Suite
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom
	controller *session.Controller
	botService *bot.Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	store := memory.New()
	logger := testutil.NopLogger()
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	s.ctx = context.Background()

	s.controller = session.NewController(
		store,
		walledLayout{},
		rounds.New(store, logger),
		s.mockClock,
		s.mockRandom,
		nil,
		session.DefaultConfig(),
		logger,
	)
	strategies := map[string]bot.Strategy{
		model.BotStrategyRandom:   bot.NewRandomStrategy(s.mockRandom),
		model.BotStrategyExplorer: bot.NewExplorerStrategy(),
	}
	s.botService = bot.NewService(s.controller, strategies, logger)
}

func (s *ServiceSuite) TearDownTest() {
	s.controller.Stop()
}

func (s *ServiceSuite) startSession() model.SessionID {
	s.mockRandom.QueueString("SESSION00001")
	created, err := s.controller.CreateSession(s.ctx, "player-1")
	s.Require().NoError(err)
	_, err = s.controller.StartGame(s.ctx, created.ID, model.ModePractice, 0)
	s.Require().NoError(err)
	return created.ID
}

func (s *ServiceSuite) TestExplorerClearsRound() {
	id := s.startSession()

	actions, err := s.botService.Play(s.ctx, id, model.BotStrategyExplorer, 0)
	s.Require().NoError(err)

	s.Require().NotEmpty(actions)
	last := actions[len(actions)-1]
	s.Equal(model.MoveWon, last.Outcome)
	s.Equal(model.Position{X: 4, Y: 4}, last.Pos)

	bumps := 0
	for _, a := range actions {
		if a.Outcome == model.MoveBumped {
			bumps++
		}
	}
	s.Equal(4, bumps)

	current, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.StatusTransition, current.Status)
	s.Len(current.Round.Revealed, 4)
}

func (s *ServiceSuite) TestDefaultStrategyIsExplorer() {
	id := s.startSession()

	actions, err := s.botService.Play(s.ctx, id, "", 0)
	s.Require().NoError(err)
	s.Equal(model.MoveWon, actions[len(actions)-1].Outcome)
}

func (s *ServiceSuite) TestPlayStopsAtMoveBudget() {
	id := s.startSession()

	actions, err := s.botService.Play(s.ctx, id, model.BotStrategyRandom, 10)
	s.Require().NoError(err)

	s.Len(actions, 10)
	current, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.StatusPlaying, current.Status)
	s.Equal(10, current.Round.Moves)
}

func (s *ServiceSuite) TestPlayDoesNothingWhenNotPlaying() {
	s.mockRandom.QueueString("SESSION00001")
	created, err := s.controller.CreateSession(s.ctx, "player-1")
	s.Require().NoError(err)

	actions, err := s.botService.Play(s.ctx, created.ID, model.BotStrategyExplorer, 10)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestPlayUnknownStrategy() {
	id := s.startSession()

	_, err := s.botService.Play(s.ctx, id, "genius", 10)
	s.ErrorIs(err, model.ErrUnknownStrategy)
}

func (s *ServiceSuite) TestPlayUnknownSession() {
	_, err := s.botService.Play(s.ctx, "missing", model.BotStrategyExplorer, 10)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ServiceSuite) TestPlayHonoursCancelledContext() {
	id := s.startSession()
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	actions, err := s.botService.Play(ctx, id, model.BotStrategyExplorer, 10)
	s.ErrorIs(err, context.Canceled)
	s.Empty(actions)
}

func (s *ServiceSuite) TestStrategies() {
	s.Equal([]string{model.BotStrategyRandom, model.BotStrategyExplorer}, s.botService.Strategies())
}
