package bot

import "github.com/mcoot/invisiblewalls/internal/model"

// View is what a player can see of a round: hazards only once revealed
type View struct {
	GridSize  int
	PlayerPos model.Position
	DoorPos   model.Position
	KeyPos    []model.Position
	Revealed  []model.Position
	Visited   []model.Position
	HasKeys   bool
}

// ViewOf extracts the player-visible part of a session's round
func ViewOf(s *model.Session) View {
	r := s.Round
	return View{
		GridSize:  r.GridSize,
		PlayerPos: r.PlayerPos,
		DoorPos:   r.DoorPos,
		KeyPos:    append([]model.Position{}, r.KeyPos...),
		Revealed:  append([]model.Position{}, r.Revealed...),
		Visited:   append([]model.Position{}, r.Visited...),
		HasKeys:   r.HasKeys(),
	}
}

// Strategy defines how a bot picks its next step
type Strategy interface {
	// NextMove returns a single orthogonal step (dx, dy)
	NextMove(view View) (dx, dy int)
}

// stepTo returns the delta from one cell to an adjacent one
func stepTo(from, to model.Position) (int, int) {
	return to.X - from.X, to.Y - from.Y
}
