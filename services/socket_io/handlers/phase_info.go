package handlers

import (
	"log"
	"time"

	game_constants "Lobera/constants/game"
	game_service "Lobera/services/game"
	"Lobera/services/redis"
	socketio_utils "Lobera/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleGetPhaseInfo responds with the current game phase and its remaining time
func HandleGetPhaseInfo(redisClient *redis.RedisClient, client *socket.Socket,
	db *gorm.DB, username string, userID uint) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			log.Printf("[PHASE-INFO-ERROR] Missing game ID for user %s", username)
			client.Emit("error", gin.H{"error": "Missing game ID"})
			return
		}

		gameID, err := socketio_utils.ParseGameID(args[0])
		if err != nil {
			client.Emit("error", gin.H{"error": "Invalid game ID"})
			return
		}

		g, _, err := socketio_utils.ValidateGameAndMember(db, client, gameID, userID)
		if err != nil {
			// Error already emitted in ValidateGameAndMember
			return
		}

		if g.Status != game_constants.GameStatusInProgress || g.PhaseStartedAt == nil {
			client.Emit("phase_info", gin.H{
				"status": g.Status,
			})
			return
		}

		now := time.Now()
		client.Emit("phase_info", gin.H{
			"status":         g.Status,
			"phase":          g.CurrentPhase,
			"current_round":  g.CurrentRound,
			"time_remaining": int(game_service.PhaseRemaining(now, g.CurrentPhase, *g.PhaseStartedAt).Seconds()),
			"started_at":     g.PhaseStartedAt.Format(time.RFC3339),
		})

		log.Printf("[PHASE-INFO] Sent phase info to user %s: phase=%s, round=%d",
			username, g.CurrentPhase, g.CurrentRound)
	}
}
