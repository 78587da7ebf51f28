package redis

import (
	"fmt"

	redis_utils "Lobera/services/redis/utils"
)

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}

// CleanupGameKeys drops everything Redis holds for a finished game: the
// chat history and every presence key
func (rc *RedisClient) CleanupGameKeys(gameID uint) error {
	keys, err := rc.client.Keys(rc.ctx, redis_utils.FormatPresencePattern(gameID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list presence keys for game %d: %v", gameID, err)
	}
	keys = append(keys, redis_utils.FormatChatKey(gameID))
	return rc.CleanupKeys(keys)
}
