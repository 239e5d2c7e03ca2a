package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/invisiblewalls/internal/dependencies/mocks"
	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, Config{}, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// NewSession creates a session with a fixed ID for the player
func (t *TestApp) NewSession(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	t.MockRandom.QueueString(string(id))
	return t.SessionController.CreateSession(ctx, playerID)
}

// WalkTo steps the player along a shortest hazard-free path to target.
// It reads the hidden board, so it only suits tests. It returns the
// outcome of the last move, or "" when the player is already there or
// no path exists.
func (t *TestApp) WalkTo(ctx context.Context, id model.SessionID, target model.Position) (model.MoveOutcome, error) {
	s, err := t.SessionController.GetSession(ctx, id)
	if err != nil {
		return "", err
	}

	var last model.MoveOutcome
	for _, step := range safePath(&s.Round, target) {
		result, err := t.SessionController.Move(ctx, id, step.X, step.Y)
		if err != nil {
			return last, err
		}
		last = result.Outcome
	}
	return last, nil
}

// ClearRound collects every remaining key and then walks onto the door
func (t *TestApp) ClearRound(ctx context.Context, id model.SessionID) (model.MoveOutcome, error) {
	for {
		s, err := t.SessionController.GetSession(ctx, id)
		if err != nil {
			return "", err
		}
		if len(s.Round.KeyPos) == 0 {
			return t.WalkTo(ctx, id, s.Round.DoorPos)
		}
		outcome, err := t.WalkTo(ctx, id, s.Round.KeyPos[0])
		if err != nil {
			return outcome, err
		}
		if outcome != model.MoveKeyCollected {
			return outcome, nil
		}
	}
}

// safePath returns the unit steps of a breadth-first path avoiding hazards
func safePath(r *model.RoundState, target model.Position) []model.Position {
	from := map[model.Position]model.Position{r.PlayerPos: r.PlayerPos}
	queue := []model.Position{r.PlayerPos}
	for len(queue) > 0 && queue[0] != target {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors(r.GridSize) {
			if _, seen := from[n]; seen || r.IsHazard(n) {
				continue
			}
			from[n] = cur
			queue = append(queue, n)
		}
	}
	if _, ok := from[target]; !ok {
		return nil
	}

	var steps []model.Position
	for p := target; p != r.PlayerPos; p = from[p] {
		prev := from[p]
		steps = append([]model.Position{{X: p.X - prev.X, Y: p.Y - prev.Y}}, steps...)
	}
	return steps
}
