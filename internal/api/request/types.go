package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StartRequest is the request body for starting a game.
// Mode defaults to campaign and Round to the first round.
type StartRequest struct {
	Mode  string `json:"mode,omitempty"`
	Round int    `json:"round,omitempty"`
}

// MoveRequest is the request body for a single step
type MoveRequest struct {
	Dx int `json:"dx"`
	Dy int `json:"dy"`
}

// DifficultyRequest is the request body for changing difficulty
type DifficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

// AutoplayRequest is the request body for letting a bot play the round
type AutoplayRequest struct {
	Strategy string `json:"strategy,omitempty"`
	MaxMoves int    `json:"max_moves,omitempty"`
}
