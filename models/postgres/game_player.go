package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'GamePlayer' represents the membership and in-game state of a user in a
 * game. It contains references to Game and User.
 */
type GamePlayer struct {
	// NOTE: composite primary key definition
	GameID   uint           `gorm:"primaryKey;not null"`
	UserID   uint           `gorm:"primaryKey;not null;index"`
	Status   string         `gorm:"size:20;default:'waiting'"`
	Role     *string        `gorm:"size:20"` // null until roles are assigned
	Stats    datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	JoinedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	LeftAt   *time.Time

	// Relationship with the game and the user account
	Game Game `gorm:"foreignKey:GameID"`
	User User `gorm:"foreignKey:UserID"`
}
