package handlers

import (
	"log"
	"time"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"
	redis_models "Lobera/models/redis"
	"Lobera/services/broadcast"
	"Lobera/services/redis"
	socketio_types "Lobera/services/socket_io/types"
	socketio_utils "Lobera/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleGameChat relays a chat message to the game room and stores it in the
// Redis history. At night the channel belongs to the wolves: messages are
// delivered only to wolf sockets, everyone else never sees them.
func HandleGameChat(redisClient *redis.RedisClient, client *socket.Socket,
	db *gorm.DB, username string, userID uint, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing game ID or message"})
			return
		}

		gameID, err := socketio_utils.ParseGameID(args[0])
		if err != nil {
			client.Emit("error", gin.H{"error": "Invalid game ID"})
			return
		}
		text, ok := args[1].(string)
		if !ok || text == "" {
			client.Emit("error", gin.H{"error": "Invalid message format"})
			return
		}

		g, member, err := socketio_utils.ValidateGameAndMember(db, client, gameID, userID)
		if err != nil {
			return
		}

		night := g.Status == game_constants.GameStatusInProgress &&
			g.CurrentPhase == game_constants.PhaseNight
		if night && !socketio_utils.IsWolfMember(member) {
			client.Emit("error", gin.H{"error": "Only wolves can talk at night"})
			return
		}

		message := &redis_models.ChatMessage{
			ID:        uuid.NewString(),
			Message:   text,
			Username:  username,
			NightOnly: night,
			Timestamp: time.Now(),
		}
		if err := redisClient.AppendChatMessage(gameID, message); err != nil {
			log.Printf("[CHAT-ERROR] Error storing message for game %d: %v", gameID, err)
		}

		payload := gin.H{
			"id":        message.ID,
			"username":  username,
			"message":   text,
			"timestamp": message.Timestamp,
		}

		if !night {
			sio.Sio_server.To(socket.Room(broadcast.GameChannel(gameID))).
				Emit("new_game_message", payload)
			return
		}

		// Night: direct delivery to each connected wolf
		var wolves []models.GamePlayer
		err = db.Preload("User").
			Where("game_id = ? AND role = ?", gameID, game_constants.RoleWolf).
			Find(&wolves).Error
		if err != nil {
			log.Printf("[CHAT-ERROR] Error fetching wolves for game %d: %v", gameID, err)
			return
		}
		for _, wolf := range wolves {
			if conn, exists := sio.GetConnection(wolf.User.Username); exists {
				conn.Emit("new_game_message", payload)
			}
		}
	}
}

// HandleGetChatHistory sends back the recent chat of a game, filtering
// night-only messages for players outside the wolf faction
func HandleGetChatHistory(redisClient *redis.RedisClient, client *socket.Socket,
	db *gorm.DB, username string, userID uint) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing game ID"})
			return
		}

		gameID, err := socketio_utils.ParseGameID(args[0])
		if err != nil {
			client.Emit("error", gin.H{"error": "Invalid game ID"})
			return
		}

		_, member, err := socketio_utils.ValidateGameAndMember(db, client, gameID, userID)
		if err != nil {
			return
		}

		history, err := redisClient.GetChatHistory(gameID, game_constants.MaxChatHistory)
		if err != nil {
			log.Printf("[CHAT-ERROR] Error fetching history for game %d: %v", gameID, err)
			client.Emit("error", gin.H{"error": "Error fetching chat history"})
			return
		}

		wolf := socketio_utils.IsWolfMember(member)
		visible := make([]redis_models.ChatMessage, 0, len(history))
		for _, message := range history {
			if message.NightOnly && !wolf {
				continue
			}
			visible = append(visible, message)
		}

		client.Emit("chat_history", gin.H{"game_id": gameID, "messages": visible})
	}
}
