package storage

import (
	"context"

	"github.com/mcoot/invisiblewalls/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Session operations. Implementations store and return copies, so
	// callers may mutate what they get back without affecting stored state.
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	ListSessionsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error)

	// Round table operations
	GetRoundTable(ctx context.Context) (model.RoundTable, error)
	SaveRoundTable(ctx context.Context, table model.RoundTable) error
}
