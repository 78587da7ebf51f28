package game

import (
	"fmt"
	"math/rand"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"

	"gorm.io/gorm"
)

// WolfCount decides how many wolves a game of n players gets
func WolfCount(n int) int {
	wolves := n / game_constants.WolfRatio
	if wolves < 1 {
		wolves = 1
	}
	return wolves
}

// AssignRoles deals roles to every active member of a game and flips them
// all to playing. Called exactly once, when the creator starts the game.
func AssignRoles(db *gorm.DB, gameID uint) error {
	var members []models.GamePlayer
	err := db.Where("game_id = ? AND status IN ?", gameID, []string{
		game_constants.PlayerStatusWaiting,
		game_constants.PlayerStatusReady,
	}).Find(&members).Error
	if err != nil {
		return fmt.Errorf("error fetching members for role assignment: %v", err)
	}
	if len(members) == 0 {
		return fmt.Errorf("no active members to assign roles to")
	}

	rand.Shuffle(len(members), func(i, j int) {
		members[i], members[j] = members[j], members[i]
	})

	wolves := WolfCount(len(members))
	for i := range members {
		role := game_constants.RoleVillager
		if i < wolves {
			role = game_constants.RoleWolf
		}

		err := db.Model(&models.GamePlayer{}).
			Where("game_id = ? AND user_id = ?", gameID, members[i].UserID).
			Updates(map[string]interface{}{
				"role":   role,
				"status": game_constants.PlayerStatusPlaying,
			}).Error
		if err != nil {
			return fmt.Errorf("error assigning role to user %d: %v", members[i].UserID, err)
		}
	}

	return nil
}
