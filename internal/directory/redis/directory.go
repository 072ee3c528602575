package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Void-Roleplay/backend/internal/directory"
	"github.com/Void-Roleplay/backend/internal/model"
)

// Directory is a Redis-backed implementation of the account directory
type Directory struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis directory instance
func New(cfg Config) (*Directory, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Directory{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis directory with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Directory {
	return &Directory{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (d *Directory) Close() error {
	return d.client.Close()
}

// Ensure Directory implements the interface
var _ directory.Directory = (*Directory)(nil)

// Player operations

func (d *Directory) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	data, err := d.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.PlayerRecord
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (d *Directory) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Pipeline so the record and its handle index entries move together
	pipe := d.client.Pipeline()
	pipe.Set(ctx, playerKey(player.UUID), data, 0)
	for platform, handle := range player.Handles {
		if handle != "" {
			pipe.Set(ctx, handleIndexKey(platform, handle), string(player.UUID), 0)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (d *Directory) FindPlayerByHandle(ctx context.Context, platform model.Platform, handle model.Handle) (*model.PlayerRecord, error) {
	idStr, err := d.client.Get(ctx, handleIndexKey(platform, handle)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return d.GetPlayer(ctx, model.PlayerID(idStr))
}

// External handle operations

func (d *Directory) SetExternalHandle(ctx context.Context, id model.PlayerID, platform model.Platform, handle model.Handle) error {
	player, err := d.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	old, hadOld := player.Handles[platform]
	if player.Handles == nil {
		player.Handles = make(map[model.Platform]model.Handle)
	}
	player.Handles[platform] = handle

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pipe := d.client.Pipeline()
	pipe.Set(ctx, playerKey(id), data, 0)
	pipe.Set(ctx, handleIndexKey(platform, handle), string(id), 0)
	if hadOld && old != "" && old != handle {
		pipe.Del(ctx, handleIndexKey(platform, old))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (d *Directory) ClearExternalHandle(ctx context.Context, id model.PlayerID, platform model.Platform) error {
	player, err := d.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	old, hadOld := player.Handles[platform]
	delete(player.Handles, platform)

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pipe := d.client.Pipeline()
	pipe.Set(ctx, playerKey(id), data, 0)
	if hadOld && old != "" {
		pipe.Del(ctx, handleIndexKey(platform, old))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Catalog operations

func (d *Directory) RoleCatalog(ctx context.Context) (*model.RoleCatalog, error) {
	data, err := d.client.Get(ctx, catalogKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCatalogNotLoaded
		}
		return nil, err
	}

	var catalog model.RoleCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (d *Directory) SaveRoleCatalog(ctx context.Context, catalog *model.RoleCatalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	return d.client.Set(ctx, catalogKey(), data, 0).Err()
}
