package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNotSessionOwner = errors.New("player does not own this session")
	ErrInvalidMode     = errors.New("invalid session mode")
	ErrInvalidRound    = errors.New("invalid round index")
	ErrInvalidMove     = errors.New("move must be a single orthogonal step")

	// Layout errors
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// Round table errors
	ErrInvalidRoundTable  = errors.New("invalid round table")
	ErrRoundTableNotFound = errors.New("round table not found")

	// Bot errors
	ErrUnknownStrategy = errors.New("unknown bot strategy")
)
