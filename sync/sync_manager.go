package sync

import (
	"fmt"
	"log"
	"time"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"
	redis_models "Lobera/models/redis"
	"Lobera/services/redis"

	"gorm.io/gorm"
)

// How long a player can stay silent before being considered gone
const presenceGracePeriod = 2 * time.Minute

type SyncManager struct {
	redisClient *redis.RedisClient
	db          *gorm.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(redisClient *redis.RedisClient, db *gorm.DB) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		db:          db,
	}
}

// SyncGamePresence reconciles Redis presence into the game_players table:
// players offline (or silent past the grace period) are flagged
// disconnected, players that came back are flagged playing again.
func (sm *SyncManager) SyncGamePresence(gameID uint) error {
	presences, err := sm.redisClient.GetGamePresence(gameID)
	if err != nil {
		return fmt.Errorf("error getting game presence from Redis: %v", err)
	}

	cutoff := time.Now().Add(-presenceGracePeriod).Unix()

	for _, presence := range presences {
		gone := presence.Status == redis_models.StatusOffline || presence.LastPing < cutoff

		userIDQuery := sm.db.Model(&models.User{}).Select("id").
			Where("username = ?", presence.Username)

		if gone {
			err = sm.db.Model(&models.GamePlayer{}).
				Where("game_id = ? AND user_id = (?) AND status = ?",
					gameID, userIDQuery, game_constants.PlayerStatusPlaying).
				Update("status", game_constants.PlayerStatusDisconnected).Error
		} else {
			err = sm.db.Model(&models.GamePlayer{}).
				Where("game_id = ? AND user_id = (?) AND status = ?",
					gameID, userIDQuery, game_constants.PlayerStatusDisconnected).
				Update("status", game_constants.PlayerStatusPlaying).Error
		}
		if err != nil {
			return fmt.Errorf("error syncing presence of %s: %v", presence.Username, err)
		}
	}

	return nil
}

// SyncActiveGames reconciles presence for every game still being played, so
// stale players stop counting as eligible voters before the next resolution
func (sm *SyncManager) SyncActiveGames() error {
	var active []models.Game
	err := sm.db.Where("status = ?", game_constants.GameStatusInProgress).
		Find(&active).Error
	if err != nil {
		return fmt.Errorf("error fetching in-progress games: %v", err)
	}

	for _, g := range active {
		if err := sm.SyncGamePresence(g.ID); err != nil {
			log.Printf("[SYNC-ERROR] Presence sync of game %d failed: %v", g.ID, err)
		}
	}
	return nil
}

// CleanupGameData drops the Redis state of a finished game after a final
// presence sync
func (sm *SyncManager) CleanupGameData(gameID uint) error {
	if err := sm.SyncGamePresence(gameID); err != nil {
		log.Printf("[SYNC-ERROR] Final presence sync for game %d failed: %v", gameID, err)
	}

	if err := sm.redisClient.CleanupGameKeys(gameID); err != nil {
		return fmt.Errorf("error cleaning Redis data for game %d: %v", gameID, err)
	}

	return nil
}

// SyncFinishedGames runs the cleanup for every game that ended recently
func (sm *SyncManager) SyncFinishedGames() error {
	var finished []models.Game
	err := sm.db.Where("status = ?", game_constants.GameStatusFinished).
		Find(&finished).Error
	if err != nil {
		return fmt.Errorf("error fetching finished games: %v", err)
	}

	for _, g := range finished {
		if err := sm.CleanupGameData(g.ID); err != nil {
			log.Printf("[SYNC-ERROR] Cleanup of game %d failed: %v", g.ID, err)
		}
	}
	return nil
}
