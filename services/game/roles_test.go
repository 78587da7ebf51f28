package game

import (
	"fmt"
	"testing"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWolfCount(t *testing.T) {
	assert.Equal(t, 1, WolfCount(3))
	assert.Equal(t, 1, WolfCount(5))
	assert.Equal(t, 2, WolfCount(8))
	assert.Equal(t, 3, WolfCount(12))
}

func TestAssignRoles(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "host")

	g := models.Game{
		Name:         "lobby game",
		CreatorID:    creator.ID,
		Status:       game_constants.GameStatusLobby,
		CurrentPhase: game_constants.PhaseDay,
		CurrentRound: 1,
	}
	require.NoError(t, db.Create(&g).Error)

	for i := 0; i < 8; i++ {
		user := createTestUser(t, db, fmt.Sprintf("member%d", i))
		require.NoError(t, db.Create(&models.GamePlayer{
			GameID: g.ID,
			UserID: user.ID,
			Status: game_constants.PlayerStatusWaiting,
		}).Error)
	}

	require.NoError(t, AssignRoles(db, g.ID))

	var members []models.GamePlayer
	require.NoError(t, db.Where("game_id = ?", g.ID).Find(&members).Error)
	require.Len(t, members, 8)

	wolves := 0
	for _, member := range members {
		assert.Equal(t, game_constants.PlayerStatusPlaying, member.Status)
		require.NotNil(t, member.Role)
		if *member.Role == game_constants.RoleWolf {
			wolves++
		} else {
			assert.Equal(t, game_constants.RoleVillager, *member.Role)
		}
	}
	assert.Equal(t, 2, wolves)
}

func TestAssignRolesEmptyGame(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "host")

	g := models.Game{
		Name:      "empty game",
		CreatorID: creator.ID,
		Status:    game_constants.GameStatusLobby,
	}
	require.NoError(t, db.Create(&g).Error)

	assert.Error(t, AssignRoles(db, g.ID))
}
