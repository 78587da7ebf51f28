package redis

import (
	"fmt"
	"testing"
	"time"

	game_constants "Lobera/constants/game"
	redis_models "Lobera/models/redis"
	redis_utils "Lobera/services/redis/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *RedisClient {
	mr := miniredis.RunT(t)
	rc, err := InitRedis("redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc
}

func TestPresenceRoundTrip(t *testing.T) {
	rc := setupTestRedis(t)

	presence := &redis_models.PlayerPresence{
		Username: "ana",
		GameID:   7,
		Status:   redis_models.StatusOnline,
		LastPing: time.Now().Unix(),
		SocketID: "sock-1",
	}
	require.NoError(t, rc.SavePresence(presence))

	got, err := rc.GetPresence(7, "ana")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ana", got.Username)
	assert.Equal(t, redis_models.StatusOnline, got.Status)

	require.NoError(t, rc.DeletePresence(7, "ana"))
	got, err = rc.GetPresence(7, "ana")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetGamePresenceListsOnlyThatGame(t *testing.T) {
	rc := setupTestRedis(t)

	for i, username := range []string{"ana", "bruno", "carla"} {
		require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
			Username: username,
			GameID:   1,
			Status:   redis_models.StatusOnline,
			LastPing: int64(i),
		}))
	}
	require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
		Username: "diego",
		GameID:   2,
		Status:   redis_models.StatusOnline,
	}))

	presences, err := rc.GetGamePresence(1)
	require.NoError(t, err)
	assert.Len(t, presences, 3)
}

func TestChatHistoryIsCappedAndOrdered(t *testing.T) {
	rc := setupTestRedis(t)

	for i := 0; i < game_constants.MaxChatHistory+50; i++ {
		require.NoError(t, rc.AppendChatMessage(3, &redis_models.ChatMessage{
			ID:        fmt.Sprintf("msg-%d", i),
			Message:   fmt.Sprintf("hello %d", i),
			Username:  "ana",
			Timestamp: time.Now(),
		}))
	}

	history, err := rc.GetChatHistory(3, game_constants.MaxChatHistory)
	require.NoError(t, err)
	assert.Len(t, history, game_constants.MaxChatHistory)
	// Newest first
	assert.Equal(t, fmt.Sprintf("msg-%d", game_constants.MaxChatHistory+49), history[0].ID)
}

func TestPublishDeliversDecodableEnvelope(t *testing.T) {
	rc := setupTestRedis(t)

	pubsub := rc.PSubscribe("game:*")
	defer pubsub.Close()

	// Wait for the subscription to be active before publishing
	_, err := pubsub.Receive(rc.ctx)
	require.NoError(t, err)

	require.NoError(t, rc.Publish("game:9", "phase_changed", map[string]interface{}{
		"phase": "night",
		"round": float64(2),
	}))

	select {
	case msg := <-pubsub.Channel():
		assert.Equal(t, "game:9", msg.Channel)
		event, payload, err := DecodeEvent(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, "phase_changed", event)
		assert.Equal(t, "night", payload["phase"])
		assert.Equal(t, float64(2), payload["round"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received on subscription")
	}
}

func TestCleanupGameKeys(t *testing.T) {
	rc := setupTestRedis(t)

	require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
		Username: "ana",
		GameID:   4,
		Status:   redis_models.StatusOnline,
	}))
	require.NoError(t, rc.AppendChatMessage(4, &redis_models.ChatMessage{
		ID: "m1", Message: "bye", Username: "ana", Timestamp: time.Now(),
	}))

	require.NoError(t, rc.CleanupGameKeys(4))

	got, err := rc.GetPresence(4, "ana")
	require.NoError(t, err)
	assert.Nil(t, got)

	history, err := rc.GetChatHistory(4, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Key formats stay stable, clients depend on them
	assert.Equal(t, "presence:4:ana", redis_utils.FormatPresenceKey(4, "ana"))
	assert.Equal(t, "chat:4", redis_utils.FormatChatKey(4))
}
