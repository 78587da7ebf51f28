package redis

import "time"

// ChatMessage represents a message in the game chat
type ChatMessage struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	NightOnly bool      `json:"night_only"` // wolf chat, hidden from villagers
	Timestamp time.Time `json:"timestamp"`
}
