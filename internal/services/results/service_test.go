package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage)
	s.ctx = context.Background()
}

// Helper to build a finished session from round results
func (s *ServiceSuite) finishedSession(mode model.Mode, results ...model.Result) *model.Session {
	session := &model.Session{
		ID:         "SESSION1",
		PlayerID:   "player-1",
		Mode:       mode,
		Status:     model.StatusFinished,
		RoundCount: 3,
	}
	for i, r := range results {
		if r == model.ResultWin {
			session.RoundsWon++
		}
		session.History = append(session.History, model.RoundHistoryEntry{
			Round:     i,
			Result:    r,
			Moves:     10,
			Bumps:     2,
			TimeSpent: 30 * time.Second,
		})
	}
	return session
}

func (s *ServiceSuite) TestCampaignPassedNotPerfect() {
	session := s.finishedSession(model.ModeCampaign, model.ResultWin, model.ResultWin, model.ResultLoss)

	result := Summarize(session)

	s.Equal(2, result.RoundsWon)
	s.Equal(3, result.RoundsPlayed)
	s.Equal(2, result.PassThreshold)
	s.True(result.Passed)
	s.False(result.Perfect)
	s.Equal(VerdictPassed, result.Verdict)
	s.Equal(30, result.TotalMoves)
	s.Equal(6, result.TotalBumps)
	s.Equal(90*time.Second, result.TotalTime)
}

func (s *ServiceSuite) TestCampaignPerfect() {
	session := s.finishedSession(model.ModeCampaign, model.ResultWin, model.ResultWin, model.ResultWin)

	result := Summarize(session)

	s.True(result.Passed)
	s.True(result.Perfect)
	s.Equal(VerdictPerfect, result.Verdict)
}

func (s *ServiceSuite) TestCampaignFailed() {
	session := s.finishedSession(model.ModeCampaign, model.ResultWin, model.ResultLoss, model.ResultLoss)

	result := Summarize(session)

	s.False(result.Passed)
	s.False(result.Perfect)
	s.Equal(VerdictFailed, result.Verdict)
}

func (s *ServiceSuite) TestEvenRoundCountThreshold() {
	session := s.finishedSession(model.ModeCampaign, model.ResultWin, model.ResultWin, model.ResultLoss, model.ResultLoss)
	session.RoundCount = 4

	result := Summarize(session)

	s.Equal(2, result.PassThreshold)
	s.True(result.Passed)
}

func (s *ServiceSuite) TestPracticeCleared() {
	session := s.finishedSession(model.ModePractice, model.ResultWin)

	result := Summarize(session)

	s.Equal(1, result.RoundCount)
	s.True(result.Passed)
	s.True(result.Perfect)
	s.Equal(VerdictRoundCleared, result.Verdict)
}

func (s *ServiceSuite) TestPracticeFailed() {
	session := s.finishedSession(model.ModePractice, model.ResultLoss)

	result := Summarize(session)

	s.False(result.Passed)
	s.Equal(VerdictRoundFailed, result.Verdict)
}

func (s *ServiceSuite) TestUnfinishedSessionHasNoVerdict() {
	session := s.finishedSession(model.ModeCampaign, model.ResultWin)
	session.Status = model.StatusPlaying

	result := Summarize(session)

	s.Empty(result.Verdict)
	s.Equal(1, result.RoundsPlayed)
}

func (s *ServiceSuite) TestResultLoadsSession() {
	session := s.finishedSession(model.ModeCampaign, model.ResultWin, model.ResultWin, model.ResultWin)
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	result, err := s.service.Result(s.ctx, "SESSION1")
	s.Require().NoError(err)
	s.Equal(model.SessionID("SESSION1"), result.SessionID)
	s.Equal(VerdictPerfect, result.Verdict)
}

func (s *ServiceSuite) TestResultSessionNotFound() {
	_, err := s.service.Result(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}
