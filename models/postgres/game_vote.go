package postgres

import (
	"time"
)

/*
 * 'GameVote' is one vote per (game, voter, phase, round). The uniqueness is
 * enforced with a composite DB constraint so concurrent re-votes by the same
 * voter resolve as last-write-wins at the storage layer, never as two rows.
 */
type GameVote struct {
	ID       uint      `gorm:"primaryKey"`
	GameID   uint      `gorm:"not null;uniqueIndex:idx_game_votes_ballot"`
	VoterID  uint      `gorm:"not null;uniqueIndex:idx_game_votes_ballot"`
	Phase    string    `gorm:"size:10;not null;uniqueIndex:idx_game_votes_ballot"`
	Round    int       `gorm:"not null;uniqueIndex:idx_game_votes_ballot"`
	TargetID uint      `gorm:"not null"`
	CastAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Game   Game `gorm:"foreignKey:GameID"`
	Voter  User `gorm:"foreignKey:VoterID"`
	Target User `gorm:"foreignKey:TargetID"`
}
