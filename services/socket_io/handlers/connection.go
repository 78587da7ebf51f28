package handlers

import (
	"log"
	"time"

	redis_models "Lobera/models/redis"
	"Lobera/services/broadcast"
	"Lobera/services/redis"
	socketio_types "Lobera/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleDisconnecting flips the player's presence to offline and drops the
// connection from the server maps
func HandleDisconnecting(redisClient *redis.RedisClient, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] User %s disconnecting", username)

		if gameID, ok := sio.GetUserGame(username); ok {
			presence := &redis_models.PlayerPresence{
				Username: username,
				GameID:   gameID,
				Status:   redis_models.StatusOffline,
				LastPing: time.Now().Unix(),
			}
			if err := redisClient.SavePresence(presence); err != nil {
				log.Printf("[DISCONNECT-ERROR] Error saving presence for %s: %v", username, err)
			}

			sio.Sio_server.To(socket.Room(broadcast.GameChannel(gameID))).
				Emit("player_offline", gin.H{"username": username})
		}

		sio.RemoveConnection(username)
	}
}
