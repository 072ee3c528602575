package redis

import (
	"fmt"

	"github.com/Void-Roleplay/backend/internal/model"
)

// Key prefix for all directory data
const keyPrefix = "voidrp"

// playerKey returns the Redis key for a PlayerRecord
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// handleIndexKey returns the Redis key for the (platform, handle) -> player_id index
func handleIndexKey(platform model.Platform, handle model.Handle) string {
	return fmt.Sprintf("%s:idx:handle:%s:%s", keyPrefix, platform, handle)
}

// catalogKey returns the Redis key for the role catalog snapshot
func catalogKey() string {
	return fmt.Sprintf("%s:catalog", keyPrefix)
}
