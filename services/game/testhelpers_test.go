package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory database with the full schema migrated
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		models.User{},
		models.Game{},
		models.GamePlayer{},
		models.GameVote{})
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// createTestGame creates an in-progress game with the given roster:
// wolves first, then villagers, everyone playing
func createTestGame(t *testing.T, db *gorm.DB, phase string, round int, wolves, villagers int) (*models.Game, []*models.User) {
	creator := createTestUser(t, db, fmt.Sprintf("creator%d", time.Now().UnixNano()))

	startedAt := time.Now()
	g := models.Game{
		Name:           "test game",
		CreatorID:      creator.ID,
		Status:         game_constants.GameStatusInProgress,
		CurrentPhase:   phase,
		CurrentRound:   round,
		PhaseStartedAt: &startedAt,
		MinPlayers:     3,
		MaxPlayers:     12,
	}
	require.NoError(t, db.Create(&g).Error)

	var users []*models.User
	for i := 0; i < wolves+villagers; i++ {
		user := createTestUser(t, db, fmt.Sprintf("player%d_%d", g.ID, i))
		role := game_constants.RoleVillager
		if i < wolves {
			role = game_constants.RoleWolf
		}
		member := models.GamePlayer{
			GameID: g.ID,
			UserID: user.ID,
			Status: game_constants.PlayerStatusPlaying,
			Role:   &role,
		}
		require.NoError(t, db.Create(&member).Error)
		users = append(users, user)
	}

	return &g, users
}

// rewindPhase moves a game's phase start into the past so it looks expired
func rewindPhase(t *testing.T, db *gorm.DB, gameID uint, by time.Duration) {
	past := time.Now().Add(-by)
	require.NoError(t, db.Model(&models.Game{}).
		Where("id = ?", gameID).
		Update("phase_started_at", past).Error)
}

func reloadGame(t *testing.T, db *gorm.DB, gameID uint) *models.Game {
	var g models.Game
	require.NoError(t, db.Where("id = ?", gameID).First(&g).Error)
	return &g
}

func memberStatus(t *testing.T, db *gorm.DB, gameID, userID uint) string {
	var member models.GamePlayer
	require.NoError(t, db.Where("game_id = ? AND user_id = ?", gameID, userID).
		First(&member).Error)
	return member.Status
}

// recordingNotifier captures published events for assertions
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Channel string
	Event   string
	Payload map[string]interface{}
}

func (n *recordingNotifier) Publish(channel string, eventName string, payload map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Channel: channel, Event: eventName, Payload: payload})
	return nil
}

func (n *recordingNotifier) eventsNamed(name string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, e := range n.events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}
