package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	game_constants "Lobera/constants/game"
	redis_models "Lobera/models/redis"
	redis_utils "Lobera/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations: presence, chat history and the
// pub/sub channel game events are broadcast on
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// InitRedis connects and verifies the connection with a ping
func InitRedis(Addr string, DB int) (*RedisClient, error) {
	rc := NewRedisClient(Addr, DB)
	if err := rc.client.Ping(rc.ctx).Err(); err != nil {
		return nil, fmt.Errorf("error pinging Redis: %v", err)
	}
	return rc, nil
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}

// SavePresence stores a player's presence in a game
// Key format: "presence:{gameID}:{username}"
// TTL: 24 hours
func (rc *RedisClient) SavePresence(presence *redis_models.PlayerPresence) error {
	key := redis_utils.FormatPresenceKey(presence.GameID, presence.Username)
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("error marshaling presence data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, 24*time.Hour).Err()
}

// GetPresence retrieves a player's presence in a game
func (rc *RedisClient) GetPresence(gameID uint, username string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(gameID, username)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting presence data: %v", err)
	}

	var presence redis_models.PlayerPresence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence data: %v", err)
	}
	return &presence, nil
}

// DeletePresence removes a player's presence key
func (rc *RedisClient) DeletePresence(gameID uint, username string) error {
	key := redis_utils.FormatPresenceKey(gameID, username)
	if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting presence data: %v", err)
	}
	return nil
}

// GetGamePresence lists the presence of every player in a game
func (rc *RedisClient) GetGamePresence(gameID uint) ([]redis_models.PlayerPresence, error) {
	pattern := redis_utils.FormatPresencePattern(gameID)
	keys, err := rc.client.Keys(rc.ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing presence keys: %v", err)
	}

	presences := make([]redis_models.PlayerPresence, 0, len(keys))
	for _, key := range keys {
		data, err := rc.client.Get(rc.ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("error getting presence key %s: %v", key, err)
		}
		var presence redis_models.PlayerPresence
		if err := json.Unmarshal(data, &presence); err != nil {
			return nil, fmt.Errorf("error unmarshaling presence key %s: %v", key, err)
		}
		presences = append(presences, presence)
	}
	return presences, nil
}

// AppendChatMessage pushes a message onto a game's chat history, capped at
// MaxChatHistory entries
// Key format: "chat:{gameID}"
func (rc *RedisClient) AppendChatMessage(gameID uint, message *redis_models.ChatMessage) error {
	key := redis_utils.FormatChatKey(gameID)
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("error marshaling chat message: %v", err)
	}

	pipe := rc.client.Pipeline()
	pipe.LPush(rc.ctx, key, data)
	pipe.LTrim(rc.ctx, key, 0, game_constants.MaxChatHistory-1)
	pipe.Expire(rc.ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error appending chat message: %v", err)
	}
	return nil
}

// GetChatHistory returns the most recent chat messages, newest first
func (rc *RedisClient) GetChatHistory(gameID uint, limit int64) ([]redis_models.ChatMessage, error) {
	key := redis_utils.FormatChatKey(gameID)
	entries, err := rc.client.LRange(rc.ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting chat history: %v", err)
	}

	messages := make([]redis_models.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var message redis_models.ChatMessage
		if err := json.Unmarshal([]byte(entry), &message); err != nil {
			return nil, fmt.Errorf("error unmarshaling chat message: %v", err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// eventEnvelope is the wire format of everything published on game channels
type eventEnvelope struct {
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

// Publish sends a game event on a channel, fire-and-forget. Satisfies
// broadcast.Notifier.
func (rc *RedisClient) Publish(channel string, eventName string, payload map[string]interface{}) error {
	data, err := json.Marshal(eventEnvelope{Event: eventName, Payload: payload})
	if err != nil {
		return fmt.Errorf("error marshaling event %s: %v", eventName, err)
	}
	if err := rc.client.Publish(rc.ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("error publishing event %s on %s: %v", eventName, channel, err)
	}
	return nil
}

// PSubscribe subscribes to a channel pattern; the socket layer relays the
// received envelopes into socket.io rooms
func (rc *RedisClient) PSubscribe(pattern string) *redis.PubSub {
	return rc.client.PSubscribe(rc.ctx, pattern)
}

// DecodeEvent unpacks a published envelope
func DecodeEvent(data string) (string, map[string]interface{}, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal([]byte(data), &envelope); err != nil {
		return "", nil, fmt.Errorf("error unmarshaling event envelope: %v", err)
	}
	return envelope.Event, envelope.Payload, nil
}
