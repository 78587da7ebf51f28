package postgres

import (
	"math/rand"
	"time"

	game_constants "Lobera/constants/game"

	"gorm.io/gorm"
)

/*
 * 'Game' defines the structure of a Werewolves game session.
 * Phase/round/timer fields are only ever mutated by the phase scheduler
 * once the game is in progress.
 */
type Game struct {
	ID             uint       `gorm:"primaryKey"`
	Name           string     `gorm:"size:100;not null"`
	JoinCode       string     `gorm:"size:10;index:idx_games_join_code"` // empty for public games
	CreatorID      uint       `gorm:"not null;index:idx_games_creator"`
	Status         string     `gorm:"size:20;default:'lobby';index:idx_games_status"`
	CurrentPhase   string     `gorm:"size:10;default:'day'"`
	CurrentRound   int        `gorm:"default:1"`
	PhaseStartedAt *time.Time // null until the game starts
	MinPlayers     int        `gorm:"default:5"`
	MaxPlayers     int        `gorm:"default:12"`
	CreatedAt      time.Time  `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Creator User          `gorm:"foreignKey:CreatorID"`
	Players []*GamePlayer `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Votes   []*GameVote   `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Random join code generation for private games
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateJoinCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// Ensure a private game gets a join code nobody else is using
func (g *Game) BeforeCreate(tx *gorm.DB) (err error) {
	if g.Status == "" {
		g.Status = game_constants.GameStatusLobby
	}
	if g.JoinCode != "pending" {
		return nil
	}
	for {
		newCode := generateJoinCode(6)
		var existing Game
		if err := tx.Where("join_code = ?", newCode).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				g.JoinCode = newCode
				return nil
			}
			return err
		}
		// Otherwise, loop again to generate a new unique code
	}
}
