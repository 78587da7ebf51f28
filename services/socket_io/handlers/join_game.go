package handlers

import (
	"log"
	"time"

	redis_models "Lobera/models/redis"
	"Lobera/services/broadcast"
	"Lobera/services/redis"
	socketio_types "Lobera/services/socket_io/types"
	socketio_utils "Lobera/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleJoinGame subscribes an authenticated socket to its game's room. The
// user must already be on the game's roster (joined via the API); the socket
// room only mirrors that membership for broadcasts.
func HandleJoinGame(redisClient *redis.RedisClient, client *socket.Socket,
	db *gorm.DB, username string, userID uint, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			log.Printf("[JOIN-ERROR] Missing game ID for user %s", username)
			client.Emit("error", gin.H{"error": "Missing game ID"})
			return
		}

		gameID, err := socketio_utils.ParseGameID(args[0])
		if err != nil {
			client.Emit("error", gin.H{"error": "Invalid game ID"})
			return
		}

		log.Printf("[JOIN] User %s joining room of game %d, Socket ID: %s", username, gameID, client.Id())

		_, _, err = socketio_utils.ValidateGameAndMember(db, client, gameID, userID)
		if err != nil {
			// Error already emitted in ValidateGameAndMember
			return
		}

		room := broadcast.GameChannel(gameID)
		client.Join(socket.Room(room))
		sio.SetUserGame(username, gameID)

		presence := &redis_models.PlayerPresence{
			Username: username,
			GameID:   gameID,
			Status:   redis_models.StatusOnline,
			LastPing: time.Now().Unix(),
			SocketID: string(client.Id()),
		}
		if err := redisClient.SavePresence(presence); err != nil {
			log.Printf("[JOIN-ERROR] Error saving presence for %s: %v", username, err)
		}

		client.Emit("game_joined", gin.H{"game_id": gameID})

		// Let the rest of the room know
		sio.Sio_server.To(socket.Room(room)).Emit("player_online", gin.H{
			"username": username,
		})
	}
}

// HandleLeaveGame removes the socket from the game room and flips presence
func HandleLeaveGame(redisClient *redis.RedisClient, client *socket.Socket,
	username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := sio.GetUserGame(username)
		if !ok {
			client.Emit("error", gin.H{"error": "You are not in a game room"})
			return
		}

		room := broadcast.GameChannel(gameID)
		client.Leave(socket.Room(room))

		presence := &redis_models.PlayerPresence{
			Username: username,
			GameID:   gameID,
			Status:   redis_models.StatusOffline,
			LastPing: time.Now().Unix(),
			SocketID: string(client.Id()),
		}
		if err := redisClient.SavePresence(presence); err != nil {
			log.Printf("[LEAVE-ERROR] Error saving presence for %s: %v", username, err)
		}

		sio.Sio_server.To(socket.Room(room)).Emit("player_offline", gin.H{
			"username": username,
		})

		log.Printf("[LEAVE] User %s left room of game %d", username, gameID)
	}
}
