package socketio_utils

import (
	"errors"
	"fmt"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// VerifyUserConnection authenticates a fresh socket connection from its
// handshake data. Returns (success, username, userID).
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (bool, string, uint) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("Handshake auth data is missing or invalid!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		client.Disconnect(true)
		return false, "", 0
	}

	username, exists := authData["username"].(string)
	if !exists {
		fmt.Println("No username provided in handshake!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing username"})
		client.Disconnect(true)
		return false, "", 0
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		client.Emit("error", gin.H{"error": "Authentication failed: unknown user"})
		client.Disconnect(true)
		return false, "", 0
	}

	return true, user.Username, user.ID
}

// ValidateGameAndMember checks that a game exists and the user is on its
// roster; emits the error itself so handlers can just return.
func ValidateGameAndMember(db *gorm.DB, client *socket.Socket, gameID uint, userID uint) (*models.Game, *models.GamePlayer, error) {
	var g models.Game
	if err := db.Where("id = ?", gameID).First(&g).Error; err != nil {
		client.Emit("error", gin.H{"error": "Game does not exist"})
		return nil, nil, err
	}

	var member models.GamePlayer
	err := db.Where("game_id = ? AND user_id = ?", gameID, userID).First(&member).Error
	if err != nil {
		client.Emit("error", gin.H{"error": "You must join the game before using its channel"})
		return nil, nil, err
	}

	return &g, &member, nil
}

// IsWolfMember reports whether a roster row carries the wolf role
func IsWolfMember(member *models.GamePlayer) bool {
	return member.Role != nil && *member.Role == game_constants.RoleWolf
}

// ParseGameID extracts a game id from a socket.io argument; JSON numbers
// arrive as float64
func ParseGameID(arg interface{}) (uint, error) {
	switch v := arg.(type) {
	case float64:
		return uint(v), nil
	case int:
		return uint(v), nil
	case uint:
		return v, nil
	default:
		return 0, errors.New("invalid game id argument")
	}
}
