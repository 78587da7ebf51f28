package utils

import (
	game_constants "Lobera/constants/game"
	"Lobera/models/postgres"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
)

// ErrorHandler handles global errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// CheckGameExists loads a game by id. A missing game surfaces as
// gorm.ErrRecordNotFound so call sites can map it straight to a 404.
func CheckGameExists(db *gorm.DB, gameID uint) (*postgres.Game, error) {
	var game postgres.Game
	if err := db.Where("id = ?", gameID).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// IsPlayerInGame reports whether the user has a roster row in the game
func IsPlayerInGame(db *gorm.DB, gameID uint, userID uint) (bool, error) {
	var count int64
	err := db.Model(&postgres.GamePlayer{}).
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CountActivePlayers counts members still part of the game (not dead, not
// disconnected, not left)
func CountActivePlayers(db *gorm.DB, gameID uint) (int64, error) {
	var count int64
	err := db.Model(&postgres.GamePlayer{}).
		Where("game_id = ? AND status IN ?", gameID, []string{
			game_constants.PlayerStatusWaiting,
			game_constants.PlayerStatusReady,
			game_constants.PlayerStatusPlaying,
		}).
		Count(&count).Error
	return count, err
}
