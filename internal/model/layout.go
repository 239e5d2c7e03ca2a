package model

import "fmt"

// Difficulty controls how densely hazards are packed
type Difficulty string

const (
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultDifficulty is used for new sessions
const DefaultDifficulty = DifficultyMedium

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	return d == DifficultyMedium || d == DifficultyHard
}

// ParseDifficulty converts a string into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// Layout is a generated board: where the player starts, where the door is,
// which cells hold keys and which cells are hazards
type Layout struct {
	StartPos Position
	DoorPos  Position
	KeyPos   []Position
	Hazards  []Position
}

// Occupied reports whether p is already used by any cell of the layout
func (l Layout) Occupied(p Position) bool {
	return p == l.StartPos || p == l.DoorPos || ContainsPosition(l.KeyPos, p) || ContainsPosition(l.Hazards, p)
}
