package model

import "fmt"

// MinGridSize is the smallest board a round may use
const MinGridSize = 3

// RoundConfig is the static shape of one round
type RoundConfig struct {
	Size         int
	KeysRequired int
}

// RoundTable is the ordered list of rounds in a campaign
type RoundTable []RoundConfig

// DefaultRoundTable returns the standard three-round campaign
func DefaultRoundTable() RoundTable {
	return RoundTable{
		{Size: 5, KeysRequired: 1},
		{Size: 7, KeysRequired: 2},
		{Size: 10, KeysRequired: 1},
	}
}

// Validate checks that every round is playable
func (t RoundTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no rounds", ErrInvalidRoundTable)
	}
	for i, rc := range t {
		if rc.Size < MinGridSize {
			return fmt.Errorf("%w: round %d size %d is below %d", ErrInvalidRoundTable, i, rc.Size, MinGridSize)
		}
		if rc.KeysRequired < 1 {
			return fmt.Errorf("%w: round %d needs at least one key", ErrInvalidRoundTable, i)
		}
		// start + door + keys must fit on the board
		if rc.KeysRequired+2 > rc.Size*rc.Size {
			return fmt.Errorf("%w: round %d has too many keys for a %dx%d board", ErrInvalidRoundTable, i, rc.Size, rc.Size)
		}
	}
	return nil
}

// Round returns the config for index i
func (t RoundTable) Round(i int) (RoundConfig, error) {
	if i < 0 || i >= len(t) {
		return RoundConfig{}, fmt.Errorf("%w: %d", ErrInvalidRound, i)
	}
	return t[i], nil
}

// PassThreshold is the number of rounds that must be won to pass a campaign
func (t RoundTable) PassThreshold() int {
	return (len(t) + 1) / 2
}

// Clone returns an independent copy of the table
func (t RoundTable) Clone() RoundTable {
	out := make(RoundTable, len(t))
	copy(out, t)
	return out
}
