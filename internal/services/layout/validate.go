package layout

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/invisiblewalls/internal/model"
)

// Reachable returns every cell reachable from start by orthogonal steps
// that avoid the blocked cells
func Reachable(size int, start model.Position, blocked mapset.Set[model.Position]) mapset.Set[model.Position] {
	visited := mapset.New[model.Position]()
	if !start.InBounds(size) || blocked.Has(start) {
		return visited
	}

	queue := []model.Position{start}
	visited.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, n := range current.Neighbors(size) {
			if visited.Has(n) || blocked.Has(n) {
				continue
			}
			visited.Put(n)
			queue = append(queue, n)
		}
	}
	return visited
}

// IsValidLayout checks that every special cell is on the board and unique,
// and that the door and every key can be reached from the start
func IsValidLayout(size int, l model.Layout) bool {
	seen := mapset.New[model.Position]()
	cells := make([]model.Position, 0, 2+len(l.KeyPos)+len(l.Hazards))
	cells = append(cells, l.StartPos, l.DoorPos)
	cells = append(cells, l.KeyPos...)
	cells = append(cells, l.Hazards...)
	for _, c := range cells {
		if !c.InBounds(size) || seen.Has(c) {
			return false
		}
		seen.Put(c)
	}

	reach := Reachable(size, l.StartPos, HazardSet(l.Hazards))
	if !reach.Has(l.DoorPos) {
		return false
	}
	for _, k := range l.KeyPos {
		if !reach.Has(k) {
			return false
		}
	}
	return true
}

// HazardSet indexes hazard cells for lookups
func HazardSet(hazards []model.Position) mapset.Set[model.Position] {
	set := mapset.New[model.Position]()
	for _, h := range hazards {
		set.Put(h)
	}
	return set
}

// Fallback is the fixed layout used when generation gives up: start in the
// top-left, door in the bottom-right and no hazards. The first key sits in
// the top-right corner; any further keys go to the bottom-left corner and
// then the first free cells in row-major order.
func Fallback(size int, keysRequired int) model.Layout {
	l := model.Layout{
		StartPos: model.Position{X: 0, Y: 0},
		DoorPos:  model.Position{X: size - 1, Y: size - 1},
		KeyPos:   []model.Position{},
		Hazards:  []model.Position{},
	}

	candidates := []model.Position{{X: size - 1, Y: 0}, {X: 0, Y: size - 1}}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			candidates = append(candidates, model.Position{X: x, Y: y})
		}
	}
	for _, c := range candidates {
		if len(l.KeyPos) >= keysRequired {
			break
		}
		if !l.Occupied(c) {
			l.KeyPos = append(l.KeyPos, c)
		}
	}
	return l
}
