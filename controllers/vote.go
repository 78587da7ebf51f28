package controllers

import (
	"errors"
	"log"
	"net/http"

	"Lobera/services/broadcast"
	game_service "Lobera/services/game"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Casts a vote in the current phase/round
// @Description Votes against a target player; re-voting replaces the previous target
// @Tags vote
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path integer true "game_id"
// @Success 200 {object} object{success=boolean}
// @Failure 400 {object} object{success=boolean,message=string}
// @Failure 403 {object} object{success=boolean,message=string}
// @Failure 404 {object} object{success=boolean,message=string}
// @Failure 409 {object} object{success=boolean,message=string}
// @Router /auth/games/{game_id}/vote [post]
// @Security ApiKeyAuth
func CastVote(db *gorm.DB, notifier broadcast.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var body struct {
			TargetID uint `json:"target_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.TargetID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "target_id is required"})
			return
		}

		if err := game_service.CastVote(db, gameID, user.ID, body.TargetID); err != nil {
			var ruleErr *game_service.RuleError
			if errors.As(err, &ruleErr) {
				c.JSON(ruleErr.Status, gin.H{"success": false, "message": ruleErr.Message})
				return
			}
			log.Printf("[VOTE-ERROR] Game %d: %v", gameID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}

		// The tally changed; connected clients re-fetch it. Voter identity
		// stays out of the payload so night votes leak nothing.
		err := notifier.Publish(broadcast.GameChannel(gameID), broadcast.EventVoteUpdate,
			map[string]interface{}{"game_id": gameID})
		if err != nil {
			log.Printf("[VOTE-ERROR] Error publishing vote update: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// @Summary Returns the tally of the current phase/round
// @Description Vote list (secret from non-wolves at night), counts and the caller's own vote
// @Tags vote
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path integer true "game_id"
// @Success 200 {object} object{votes=array,voted_count=integer,total_voters=integer,all_voted=boolean}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/games/{game_id}/votes [get]
// @Security ApiKeyAuth
func GetVotes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		summary, err := game_service.GetVotes(db, gameID, user.ID)
		if err != nil {
			var ruleErr *game_service.RuleError
			if errors.As(err, &ruleErr) {
				c.JSON(ruleErr.Status, gin.H{"error": ruleErr.Message})
				return
			}
			log.Printf("[VOTE-ERROR] Game %d: %v", gameID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}
