package bot

import (
	"github.com/mcoot/invisiblewalls/internal/dependencies/random"
	"github.com/mcoot/invisiblewalls/internal/model"
)

// RandomStrategy wanders to a random neighbouring cell, avoiding hazards it
// has already seen
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// NextMove picks a random in-bounds neighbour that is not a revealed hazard
func (s *RandomStrategy) NextMove(view View) (int, int) {
	neighbors := view.PlayerPos.Neighbors(view.GridSize)
	var open []model.Position
	for _, n := range neighbors {
		if !model.ContainsPosition(view.Revealed, n) {
			open = append(open, n)
		}
	}
	if len(open) == 0 {
		open = neighbors
	}
	if len(open) == 0 {
		return 1, 0
	}
	return stepTo(view.PlayerPos, open[s.random.Intn(len(open))])
}
