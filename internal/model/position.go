package model

// Position is a cell on the board, 0 <= X,Y < grid size
type Position struct {
	X int
	Y int
}

// Add returns the position offset by (dx, dy)
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// InBounds reports whether the position lies on a size x size grid
func (p Position) InBounds(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// Manhattan returns the taxicab distance between two positions
func (p Position) Manhattan(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Neighbors returns the in-bounds orthogonal neighbours, ordered right, left, down, up
func (p Position) Neighbors(size int) []Position {
	out := make([]Position, 0, 4)
	for _, d := range directions {
		n := p.Add(d.X, d.Y)
		if n.InBounds(size) {
			out = append(out, n)
		}
	}
	return out
}

var directions = []Position{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// ContainsPosition reports whether p is in the slice
func ContainsPosition(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// RemovePosition returns ps without any occurrence of p
func RemovePosition(ps []Position, p Position) []Position {
	out := make([]Position, 0, len(ps))
	for _, q := range ps {
		if q != p {
			out = append(out, q)
		}
	}
	return out
}

// Side is the face of a hazard cell that the player walked into
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideUp    Side = "up"
	SideDown  Side = "down"
)

// SideForDelta maps a movement delta to the struck face of the target cell.
// Moving right (dx=+1) strikes the hazard's left face, and so on.
func SideForDelta(dx, dy int) Side {
	switch {
	case dx > 0:
		return SideLeft
	case dx < 0:
		return SideRight
	case dy > 0:
		return SideUp
	default:
		return SideDown
	}
}

// ValidDelta reports whether (dx, dy) is a single orthogonal step
func ValidDelta(dx, dy int) bool {
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
		return false
	}
	return abs(dx)+abs(dy) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
