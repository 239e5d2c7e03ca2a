package model

import "time"

// SessionResult summarises a session for the result screen
type SessionResult struct {
	SessionID     SessionID
	Mode          Mode
	Status        Status
	RoundsWon     int
	RoundsPlayed  int
	RoundCount    int
	PassThreshold int
	Passed        bool
	Perfect       bool
	TotalMoves    int
	TotalBumps    int
	TotalTime     time.Duration
	Verdict       string
}
