package model

import (
	"strings"
	"time"
)

// MaxDisplayNameLength bounds the visible name of a player
const MaxDisplayNameLength = 32

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player owns sessions
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for unregistered players
	CreatedAt   time.Time
}

// RegisteredPlayer holds login data for a non-guest player.
// Stored separately from Player so the hash never travels with a session.
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // immutable
	PasswordHash string // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeDisplayName trims a display name and reports whether it is usable
func NormalizeDisplayName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxDisplayNameLength {
		return "", false
	}
	return name, true
}
