package bot

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/invisiblewalls/internal/model"
	"github.com/mcoot/invisiblewalls/internal/services/layout"
)

// ExplorerStrategy walks the shortest path, over cells not known to be
// hazards, to the nearest remaining key and then to the door. Every bump
// reveals a hazard, so the planned path improves until it gets through.
type ExplorerStrategy struct{}

// NewExplorerStrategy creates a new ExplorerStrategy
func NewExplorerStrategy() *ExplorerStrategy {
	return &ExplorerStrategy{}
}

// NextMove returns the first step of the current best path
func (s *ExplorerStrategy) NextMove(view View) (int, int) {
	targets := mapset.New[model.Position]()
	if view.HasKeys || len(view.KeyPos) == 0 {
		targets.Put(view.DoorPos)
	} else {
		for _, k := range view.KeyPos {
			targets.Put(k)
		}
	}

	if next, ok := firstStep(view.GridSize, view.PlayerPos, targets, layout.HazardSet(view.Revealed)); ok {
		return stepTo(view.PlayerPos, next)
	}

	// boxed in by revealed hazards: take any step and let the round reset
	if neighbors := view.PlayerPos.Neighbors(view.GridSize); len(neighbors) > 0 {
		return stepTo(view.PlayerPos, neighbors[0])
	}
	return 1, 0
}

// firstStep runs a breadth-first search from start and returns the first
// cell on a shortest path to any target
func firstStep(size int, start model.Position, targets, blocked mapset.Set[model.Position]) (model.Position, bool) {
	parent := map[model.Position]model.Position{}
	seen := mapset.New[model.Position]()
	seen.Put(start)
	queue := []model.Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current != start && targets.Has(current) {
			for parent[current] != start {
				current = parent[current]
			}
			return current, true
		}

		for _, n := range current.Neighbors(size) {
			if seen.Has(n) || blocked.Has(n) {
				continue
			}
			seen.Put(n)
			parent[n] = current
			queue = append(queue, n)
		}
	}
	return model.Position{}, false
}
