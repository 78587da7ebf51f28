package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"
	"Lobera/services/broadcast"
	game_service "Lobera/services/game"
	"Lobera/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondGameLookupError maps a failed game lookup to its HTTP answer
func respondGameLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseGameID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("game_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game id"})
		return 0, false
	}
	return uint(id), true
}

// @Summary Creates a new game
// @Description Creates a game in lobby state; private games get a join code
// @Tags game
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{game_id=integer,join_code=string,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/games [post]
// @Security ApiKeyAuth
func CreateGame(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var body struct {
			Name       string `json:"name"`
			Private    bool   `json:"private"`
			MinPlayers int    `json:"min_players"`
			MaxPlayers int    `json:"max_players"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game name is required"})
			return
		}

		if body.MinPlayers == 0 {
			body.MinPlayers = game_constants.DefaultMinPlayers
		}
		if body.MaxPlayers == 0 {
			body.MaxPlayers = game_constants.DefaultMaxPlayers
		}
		if body.MinPlayers < 3 || body.MaxPlayers < body.MinPlayers {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player limits"})
			return
		}

		newGame := models.Game{
			Name:         body.Name,
			CreatorID:    user.ID,
			Status:       game_constants.GameStatusLobby,
			CurrentPhase: game_constants.PhaseDay,
			CurrentRound: 1,
			MinPlayers:   body.MinPlayers,
			MaxPlayers:   body.MaxPlayers,
		}
		if body.Private {
			// *There is a hook on the Game model ("BeforeCreate") that turns
			// this marker into a unique code
			newGame.JoinCode = "pending"
		}

		if err := db.Create(&newGame).Error; err != nil {
			log.Printf("[GAME-ERROR] Failed to create game: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating game"})
			return
		}

		// The creator joins their own game right away
		member := models.GamePlayer{
			GameID: newGame.ID,
			UserID: user.ID,
			Status: game_constants.PlayerStatusWaiting,
		}
		if err := db.Create(&member).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding creator to game"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"game_id":   newGame.ID,
			"join_code": newGame.JoinCode,
			"message":   "Game created successfully",
		})
	}
}

// @Summary Lists all joinable games
// @Description Returns every public game still in lobby state
// @Tags game
// @Produce json
// @Success 200 {array} object{game_id=integer,name=string,player_count=integer}
// @Failure 500 {object} object{error=string}
// @Router /games [get]
func GetAllGames(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var games []models.Game
		err := db.Where("status = ? AND join_code = ''", game_constants.GameStatusLobby).
			Preload("Players").Find(&games).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching games"})
			return
		}

		list := make([]gin.H, len(games))
		for i, g := range games {
			list[i] = gin.H{
				"game_id":      g.ID,
				"name":         g.Name,
				"player_count": len(g.Players),
				"min_players":  g.MinPlayers,
				"max_players":  g.MaxPlayers,
				"created_at":   g.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary Gives info of a game
// @Description Given a game id, it will return its information
// @Tags game
// @Produce json
// @Param game_id path integer true "Id of the game wanted"
// @Success 200 {object} object{game_id=integer,name=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /games/{game_id} [get]
func GetGameInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		var g models.Game
		result := db.Preload("Players").Preload("Creator").Where("id = ?", gameID).First(&g)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
			}
			return
		}

		response := gin.H{
			"game_id":      g.ID,
			"name":         g.Name,
			"creator":      g.Creator.Username,
			"status":       g.Status,
			"player_count": len(g.Players),
			"min_players":  g.MinPlayers,
			"max_players":  g.MaxPlayers,
			"created_at":   g.CreatedAt,
		}
		if g.Status == game_constants.GameStatusInProgress && g.PhaseStartedAt != nil {
			response["current_phase"] = g.CurrentPhase
			response["current_round"] = g.CurrentRound
			response["time_remaining"] = int(game_service.PhaseRemaining(
				time.Now(), g.CurrentPhase, *g.PhaseStartedAt).Seconds())
		}
		c.JSON(http.StatusOK, response)
	}
}

// @Summary Inserts a user into a game
// @Description Adds the user to the game's roster while it is in the lobby
// @Tags game
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path integer true "game_id"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/games/{game_id}/join [post]
// @Security ApiKeyAuth
func JoinGame(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		g, err := utils.CheckGameExists(db, gameID)
		if err != nil {
			respondGameLookupError(c, err)
			return
		}

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		if g.Status != game_constants.GameStatusLobby {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game has already started"})
			return
		}

		var body struct {
			Code string `json:"code"`
		}
		_ = c.ShouldBindJSON(&body)
		if g.JoinCode != "" && g.JoinCode != body.Code {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid join code"})
			return
		}

		var memberCount int64
		db.Model(&models.GamePlayer{}).Where("game_id = ?", g.ID).Count(&memberCount)
		if memberCount >= int64(g.MaxPlayers) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game is full"})
			return
		}

		already, err := utils.IsPlayerInGame(db, g.ID, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking game membership"})
			return
		}
		if already {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is already in this game"})
			return
		}

		member := models.GamePlayer{
			GameID: g.ID,
			UserID: user.ID,
			Status: game_constants.PlayerStatusWaiting,
		}
		if err := db.Create(&member).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding user to game"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Joined game successfully"})
	}
}

// @Summary Removes the user from the game
// @Description Deletes the membership in the lobby, marks it disconnected mid-game
// @Tags game
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path integer true "game_id"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/games/{game_id}/leave [post]
// @Security ApiKeyAuth
func LeaveGame(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		g, err := utils.CheckGameExists(db, gameID)
		if err != nil {
			respondGameLookupError(c, err)
			return
		}

		var member models.GamePlayer
		result := db.Where("game_id = ? AND user_id = ?", g.ID, user.ID).First(&member)
		if result.RowsAffected == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not in this game"})
			return
		}

		if g.Status == game_constants.GameStatusLobby {
			if err := db.Delete(&member).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing user from game"})
				return
			}
		} else {
			// Mid-game the roster row stays, the player just stops counting
			// as active
			now := time.Now()
			err := db.Model(&models.GamePlayer{}).
				Where("game_id = ? AND user_id = ?", g.ID, user.ID).
				Updates(map[string]interface{}{
					"status":  game_constants.PlayerStatusDisconnected,
					"left_at": now,
				}).Error
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error leaving game"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Left game successfully"})
	}
}

// @Summary Starts a game
// @Description Creator only; assigns roles and opens the first day phase
// @Tags game
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path integer true "game_id"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/games/{game_id}/start [post]
// @Security ApiKeyAuth
func StartGame(db *gorm.DB, notifier broadcast.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		g, err := utils.CheckGameExists(db, gameID)
		if err != nil {
			respondGameLookupError(c, err)
			return
		}

		if g.CreatorID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can start the game"})
			return
		}
		if g.Status != game_constants.GameStatusLobby {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game has already started"})
			return
		}

		memberCount, err := utils.CountActivePlayers(db, g.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting players"})
			return
		}
		if memberCount < int64(g.MinPlayers) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough players to start"})
			return
		}

		if err := game_service.AssignRoles(db, g.ID); err != nil {
			log.Printf("[GAME-ERROR] Failed to assign roles for game %d: %v", g.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error assigning roles"})
			return
		}

		now := time.Now()
		err = db.Model(&models.Game{}).Where("id = ?", g.ID).
			Updates(map[string]interface{}{
				"status":           game_constants.GameStatusInProgress,
				"current_phase":    game_constants.PhaseDay,
				"current_round":    1,
				"phase_started_at": now,
			}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error starting game"})
			return
		}

		log.Printf("[GAME] Game %d started by %s with %d players", g.ID, user.Username, memberCount)

		channel := broadcast.GameChannel(g.ID)
		if err := notifier.Publish(channel, broadcast.EventGameStarted, map[string]interface{}{
			"game_id": g.ID,
		}); err != nil {
			log.Printf("[GAME-ERROR] Error publishing game start: %v", err)
		}
		if err := notifier.Publish(channel, broadcast.EventPhaseChanged, map[string]interface{}{
			"phase":          game_constants.PhaseDay,
			"round":          1,
			"time_remaining": int(game_service.PhaseDuration(game_constants.PhaseDay).Seconds()),
			"started_at":     now.Format(time.RFC3339),
		}); err != nil {
			log.Printf("[GAME-ERROR] Error publishing first phase: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Game started successfully"})
	}
}
