package broadcast

import (
	"fmt"
	"log"
)

// Notifier is the opaque publish mechanism used to inform connected clients
// about game events. Delivery is fire-and-forget: nobody in this codebase
// retries a publish.
type Notifier interface {
	Publish(channel string, eventName string, payload map[string]interface{}) error
}

// Event names published on game channels
const (
	EventPhaseChanged     = "phase_changed"
	EventPlayerEliminated = "player_eliminated"
	EventGameStarted      = "game_started"
	EventGameFinished     = "game_finished"
	EventVoteUpdate       = "vote_update"
)

// GameChannel names the per-game channel all game events go through
func GameChannel(gameID uint) string {
	return fmt.Sprintf("game:%d", gameID)
}

// LogNotifier just logs events. Used by the scheduler command when running
// without Redis, and by tests.
type LogNotifier struct{}

func (LogNotifier) Publish(channel string, eventName string, payload map[string]interface{}) error {
	log.Printf("[BROADCAST] %s -> %s: %v", channel, eventName, payload)
	return nil
}
