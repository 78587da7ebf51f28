package routes

import (
	"Lobera/controllers"
	"Lobera/middleware"
	"Lobera/services/broadcast"
	utils "Lobera/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, notifier broadcast.Notifier) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/login", controllers.Login(db))

	api.POST("/signup", controllers.SignUp(db))

	api.GET("/games", controllers.GetAllGames(db))

	api.GET("/games/:game_id", controllers.GetGameInfo(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.GET("/me", controllers.GetUserPrivateInfo(db))

		authentication.POST("/games", controllers.CreateGame(db))

		authentication.POST("/games/:game_id/join", controllers.JoinGame(db))

		authentication.POST("/games/:game_id/leave", controllers.LeaveGame(db))

		authentication.POST("/games/:game_id/start", controllers.StartGame(db, notifier))

		authentication.POST("/games/:game_id/vote", controllers.CastVote(db, notifier))

		authentication.GET("/games/:game_id/votes", controllers.GetVotes(db))
	}
}
