package memory

import (
	"context"
	"sync"

	"github.com/Void-Roleplay/backend/internal/directory"
	"github.com/Void-Roleplay/backend/internal/model"
)

// Directory is an in-memory implementation of the account directory
type Directory struct {
	mu sync.RWMutex

	players     map[model.PlayerID]*model.PlayerRecord
	handleIndex map[handleKey]model.PlayerID
	catalog     *model.RoleCatalog
}

type handleKey struct {
	platform model.Platform
	handle   model.Handle
}

// New creates a new in-memory directory instance
func New() *Directory {
	return &Directory{
		players:     make(map[model.PlayerID]*model.PlayerRecord),
		handleIndex: make(map[handleKey]model.PlayerID),
	}
}

// Ensure Directory implements the interface
var _ directory.Directory = (*Directory)(nil)

// Player operations

func (d *Directory) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	player, ok := d.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return clonePlayer(player), nil
}

func (d *Directory) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.players[player.UUID] = clonePlayer(player)
	for platform, handle := range player.Handles {
		if handle != "" {
			d.handleIndex[handleKey{platform, handle}] = player.UUID
		}
	}
	return nil
}

func (d *Directory) FindPlayerByHandle(ctx context.Context, platform model.Platform, handle model.Handle) (*model.PlayerRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.handleIndex[handleKey{platform, handle}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := d.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return clonePlayer(player), nil
}

// External handle operations

func (d *Directory) SetExternalHandle(ctx context.Context, id model.PlayerID, platform model.Platform, handle model.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	player, ok := d.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if player.Handles == nil {
		player.Handles = make(map[model.Platform]model.Handle)
	}
	if old, ok := player.Handles[platform]; ok && old != "" {
		delete(d.handleIndex, handleKey{platform, old})
	}
	player.Handles[platform] = handle
	d.handleIndex[handleKey{platform, handle}] = id
	return nil
}

func (d *Directory) ClearExternalHandle(ctx context.Context, id model.PlayerID, platform model.Platform) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	player, ok := d.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if old, ok := player.Handles[platform]; ok && old != "" {
		delete(d.handleIndex, handleKey{platform, old})
	}
	delete(player.Handles, platform)
	return nil
}

// Catalog operations

func (d *Directory) RoleCatalog(ctx context.Context) (*model.RoleCatalog, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.catalog == nil {
		return nil, model.ErrCatalogNotLoaded
	}
	return d.catalog, nil
}

func (d *Directory) SaveRoleCatalog(ctx context.Context, catalog *model.RoleCatalog) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catalog = catalog
	return nil
}

// clonePlayer copies a record so callers never share the stored map
func clonePlayer(p *model.PlayerRecord) *model.PlayerRecord {
	out := *p
	out.Handles = make(map[model.Platform]model.Handle, len(p.Handles))
	for platform, handle := range p.Handles {
		out.Handles[platform] = handle
	}
	return &out
}
