package main

import (
	"log"

	"Lobera/config"
	"Lobera/services/broadcast"
	game_service "Lobera/services/game"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Single-pass phase scheduler, meant to be invoked by an external timer
// (cron, systemd timer, a container orchestrator job). Each run processes
// every in-progress game to completion and exits; per-game failures are
// logged, never fatal.
func main() {
	godotenv.Load()

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	var notifier broadcast.Notifier
	redisClient, err := config.Connect_redis()
	if err != nil {
		// Phase advancement matters more than notifications: run the tick
		// anyway and let the log be the only audience
		log.Printf("Warning: Redis unavailable, broadcasting to log only: %v", err)
		notifier = broadcast.LogNotifier{}
	} else {
		defer redisClient.Close()
		notifier = redisClient
	}

	advanced := game_service.RunTick(gormDB, notifier)
	log.Printf("[SCHEDULER] Run finished, %d games advanced", advanced)
}
