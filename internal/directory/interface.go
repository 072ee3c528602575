package directory

import (
	"context"

	"github.com/Void-Roleplay/backend/internal/model"
)

// Directory is the account directory: the store of in-game identities and the
// read-only role catalog. The linking engine reads player records, writes only
// the external handle fields, and snapshots the catalog per reconciliation.
type Directory interface {
	// Player operations
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error)
	SavePlayer(ctx context.Context, player *model.PlayerRecord) error
	FindPlayerByHandle(ctx context.Context, platform model.Platform, handle model.Handle) (*model.PlayerRecord, error)

	// External handle operations
	SetExternalHandle(ctx context.Context, id model.PlayerID, platform model.Platform, handle model.Handle) error
	ClearExternalHandle(ctx context.Context, id model.PlayerID, platform model.Platform) error

	// Catalog operations
	RoleCatalog(ctx context.Context) (*model.RoleCatalog, error)
	SaveRoleCatalog(ctx context.Context, catalog *model.RoleCatalog) error
}
