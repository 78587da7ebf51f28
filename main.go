package main

import (
	"log"
	"os"
	"time"

	"Lobera/config"
	_ "Lobera/config/swagger"
	game_constants "Lobera/constants/game"
	"Lobera/middleware"
	"Lobera/routes"
	game_service "Lobera/services/game"
	"Lobera/services/socket_io"
	syncmanager "Lobera/sync"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Lobera API
// @version 1.0
// @description Gin-Gonic server for the "Lobera" werewolves game API
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connection to Redis successful")

	router := gin.Default()
	middleware.SetUpMiddleware(router)
	routes.SetupRoutes(router, gormDB, redisClient)

	sio := &socket_io.MySocketServer{}
	sio.Start(router, gormDB, redisClient)

	// Optional in-process scheduler for deployments without an external timer
	if os.Getenv("PHASE_SCHEDULER") == "true" {
		syncManager := syncmanager.NewSyncManager(redisClient, gormDB)
		go func() {
			ticker := time.NewTicker(game_constants.SchedulerTickInterval)
			defer ticker.Stop()
			for range ticker.C {
				// Reconcile presence first so the tick resolves votes over an
				// up-to-date eligible set
				if err := syncManager.SyncActiveGames(); err != nil {
					log.Printf("[SYNC-ERROR] %v", err)
				}
				game_service.RunTick(gormDB, redisClient)
				if err := syncManager.SyncFinishedGames(); err != nil {
					log.Printf("[SYNC-ERROR] %v", err)
				}
			}
		}()
		log.Println("In-process phase scheduler started")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server started on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
