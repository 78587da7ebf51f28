package postgres

import (
	"time"
)

/*
 * 'User' contains the blueprint definition of a User account.
 */
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"size:100;not null;uniqueIndex"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	MemberSince  time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Games the user has created
	CreatedGames []*Game `gorm:"foreignKey:CreatorID"`
}
