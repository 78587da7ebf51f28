package sync

import (
	"testing"
	"time"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"
	redis_models "Lobera/models/redis"
	"Lobera/services/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSyncTest(t *testing.T) (*SyncManager, *gorm.DB, *redis.RedisClient) {
	mr := miniredis.RunT(t)
	rc, err := redis.InitRedis("redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		models.User{}, models.Game{}, models.GamePlayer{}, models.GameVote{}))

	return NewSyncManager(rc, db), db, rc
}

func seedSyncGame(t *testing.T, db *gorm.DB, status, playerStatus string) (*models.Game, *models.User) {
	user := models.User{Email: "ana@example.com", Username: "ana", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now()
	g := models.Game{
		Name:           "sync test game",
		CreatorID:      user.ID,
		Status:         status,
		CurrentPhase:   game_constants.PhaseDay,
		CurrentRound:   1,
		PhaseStartedAt: &now,
	}
	require.NoError(t, db.Create(&g).Error)

	require.NoError(t, db.Create(&models.GamePlayer{
		GameID: g.ID,
		UserID: user.ID,
		Status: playerStatus,
	}).Error)

	return &g, &user
}

func syncedStatus(t *testing.T, db *gorm.DB, gameID, userID uint) string {
	var member models.GamePlayer
	require.NoError(t, db.Where("game_id = ? AND user_id = ?", gameID, userID).
		First(&member).Error)
	return member.Status
}

func TestSyncActiveGamesFlagsOfflinePlayers(t *testing.T) {
	sm, db, rc := setupSyncTest(t)
	g, user := seedSyncGame(t, db,
		game_constants.GameStatusInProgress, game_constants.PlayerStatusPlaying)

	require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
		Username: user.Username,
		GameID:   g.ID,
		Status:   redis_models.StatusOffline,
		LastPing: time.Now().Unix(),
	}))

	require.NoError(t, sm.SyncActiveGames())
	assert.Equal(t, game_constants.PlayerStatusDisconnected, syncedStatus(t, db, g.ID, user.ID))
}

func TestSyncActiveGamesFlagsStalePings(t *testing.T) {
	sm, db, rc := setupSyncTest(t)
	g, user := seedSyncGame(t, db,
		game_constants.GameStatusInProgress, game_constants.PlayerStatusPlaying)

	// Nominally online but silent past the grace period
	require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
		Username: user.Username,
		GameID:   g.ID,
		Status:   redis_models.StatusOnline,
		LastPing: time.Now().Add(-presenceGracePeriod - time.Minute).Unix(),
	}))

	require.NoError(t, sm.SyncActiveGames())
	assert.Equal(t, game_constants.PlayerStatusDisconnected, syncedStatus(t, db, g.ID, user.ID))
}

func TestSyncActiveGamesRestoresReturnedPlayers(t *testing.T) {
	sm, db, rc := setupSyncTest(t)
	g, user := seedSyncGame(t, db,
		game_constants.GameStatusInProgress, game_constants.PlayerStatusDisconnected)

	require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
		Username: user.Username,
		GameID:   g.ID,
		Status:   redis_models.StatusOnline,
		LastPing: time.Now().Unix(),
	}))

	require.NoError(t, sm.SyncActiveGames())
	assert.Equal(t, game_constants.PlayerStatusPlaying, syncedStatus(t, db, g.ID, user.ID))
}

func TestSyncActiveGamesSkipsLobbyGames(t *testing.T) {
	sm, db, rc := setupSyncTest(t)
	g, user := seedSyncGame(t, db,
		game_constants.GameStatusLobby, game_constants.PlayerStatusWaiting)

	require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
		Username: user.Username,
		GameID:   g.ID,
		Status:   redis_models.StatusOffline,
		LastPing: time.Now().Unix(),
	}))

	require.NoError(t, sm.SyncActiveGames())
	assert.Equal(t, game_constants.PlayerStatusWaiting, syncedStatus(t, db, g.ID, user.ID))
}

func TestSyncFinishedGamesCleansRedis(t *testing.T) {
	sm, db, rc := setupSyncTest(t)
	g, user := seedSyncGame(t, db,
		game_constants.GameStatusFinished, game_constants.PlayerStatusDead)

	require.NoError(t, rc.SavePresence(&redis_models.PlayerPresence{
		Username: user.Username,
		GameID:   g.ID,
		Status:   redis_models.StatusOffline,
	}))
	require.NoError(t, rc.AppendChatMessage(g.ID, &redis_models.ChatMessage{
		ID: "m1", Message: "gg", Username: user.Username, Timestamp: time.Now(),
	}))

	require.NoError(t, sm.SyncFinishedGames())

	presence, err := rc.GetPresence(g.ID, user.Username)
	require.NoError(t, err)
	assert.Nil(t, presence)

	history, err := rc.GetChatHistory(g.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}
