package game

import (
	"fmt"
	"log"
	"time"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"
	"Lobera/services/broadcast"

	"gorm.io/gorm"
)

// RunTick is one pass of the phase scheduler: scan every in-progress game
// and advance the ones whose phase timer has elapsed. A failure on one game
// never stops the rest of the batch. Returns the number of games advanced.
func RunTick(db *gorm.DB, notifier broadcast.Notifier) int {
	now := time.Now()

	var games []models.Game
	err := db.Where("status = ? AND phase_started_at IS NOT NULL",
		game_constants.GameStatusInProgress).Find(&games).Error
	if err != nil {
		log.Printf("[SCHEDULER-ERROR] Error fetching in-progress games: %v", err)
		return 0
	}

	advanced := 0
	for i := range games {
		ok, err := advanceIfExpired(db, notifier, &games[i], now)
		if err != nil {
			log.Printf("[SCHEDULER-ERROR] Game %d: %v", games[i].ID, err)
			continue
		}
		if ok {
			advanced++
		}
	}

	log.Printf("[SCHEDULER] Tick complete: %d of %d in-progress games advanced", advanced, len(games))
	return advanced
}

// advanceIfExpired commits a single phase transition, at most once per
// expiry. The UPDATE is conditioned on the phase_started_at value we read,
// so when two schedulers race only one of them owns the transition; the
// loser sees RowsAffected == 0 and walks away without resolving or
// notifying anything.
func advanceIfExpired(db *gorm.DB, notifier broadcast.Notifier, g *models.Game, now time.Time) (bool, error) {
	startedAt := *g.PhaseStartedAt
	if !PhaseExpired(now, g.CurrentPhase, startedAt) {
		return false, nil
	}

	endingPhase := g.CurrentPhase
	endingRound := g.CurrentRound

	newPhase := NextPhase(endingPhase)
	newRound := endingRound
	if newPhase == game_constants.PhaseDay {
		// Round counts completed night->day cycles
		newRound++
	}

	res := db.Model(&models.Game{}).
		Where("id = ? AND status = ? AND phase_started_at = ?",
			g.ID, game_constants.GameStatusInProgress, startedAt).
		Updates(map[string]interface{}{
			"current_phase":    newPhase,
			"current_round":    newRound,
			"phase_started_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("error advancing phase: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("[SCHEDULER-INFO] Game %d already advanced by a concurrent tick, skipping", g.ID)
		return false, nil
	}

	log.Printf("[SCHEDULER] Game %d: %s (round %d) -> %s (round %d)",
		g.ID, endingPhase, endingRound, newPhase, newRound)

	// Resolve the ballot of the phase that just ended
	eliminated, err := resolveVotes(db, notifier, g.ID, endingPhase, endingRound)
	if err != nil {
		// The transition itself is committed; resolution failures are logged
		// and the game keeps running
		log.Printf("[SCHEDULER-ERROR] Game %d: vote resolution failed: %v", g.ID, err)
	}

	over, winner, err := checkGameEnd(db, g.ID)
	if err != nil {
		log.Printf("[SCHEDULER-ERROR] Game %d: win check failed: %v", g.ID, err)
	}
	if over {
		return true, finishGame(db, notifier, g.ID, winner, eliminated)
	}

	err = notifier.Publish(broadcast.GameChannel(g.ID), broadcast.EventPhaseChanged, map[string]interface{}{
		"phase":          newPhase,
		"round":          newRound,
		"time_remaining": int(PhaseDuration(newPhase).Seconds()),
		"started_at":     now.Format(time.RFC3339),
	})
	if err != nil {
		return true, fmt.Errorf("error publishing phase change: %v", err)
	}

	return true, nil
}

// resolveVotes turns the completed tally of the ending phase/round into an
// elimination: the target with the most votes dies. A tie for first place,
// or an empty ballot, eliminates nobody.
func resolveVotes(db *gorm.DB, notifier broadcast.Notifier, gameID uint, phase string, round int) (*models.GamePlayer, error) {
	var votes []models.GameVote
	err := db.Where("game_id = ? AND phase = ? AND round = ?", gameID, phase, round).
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching votes for resolution: %v", err)
	}
	if len(votes) == 0 {
		log.Printf("[RESOLUTION-INFO] Game %d: no votes cast in %s round %d", gameID, phase, round)
		return nil, nil
	}

	counts := make(map[uint]int)
	for _, v := range votes {
		counts[v.TargetID]++
	}

	var topTarget uint
	topVotes, tied := 0, false
	for target, n := range counts {
		switch {
		case n > topVotes:
			topTarget, topVotes, tied = target, n, false
		case n == topVotes:
			tied = true
		}
	}
	if tied {
		log.Printf("[RESOLUTION-INFO] Game %d: tie at %d votes in %s round %d, nobody eliminated",
			gameID, topVotes, phase, round)
		return nil, nil
	}

	res := db.Model(&models.GamePlayer{}).
		Where("game_id = ? AND user_id = ? AND status = ?",
			gameID, topTarget, game_constants.PlayerStatusPlaying).
		Update("status", game_constants.PlayerStatusDead)
	if res.Error != nil {
		return nil, fmt.Errorf("error eliminating player %d: %v", topTarget, res.Error)
	}
	if res.RowsAffected == 0 {
		// Target died or left between cast and resolution
		log.Printf("[RESOLUTION-INFO] Game %d: top target %d no longer playing, skipping elimination",
			gameID, topTarget)
		return nil, nil
	}

	var victim models.GamePlayer
	if err := db.Preload("User").
		Where("game_id = ? AND user_id = ?", gameID, topTarget).
		First(&victim).Error; err != nil {
		return nil, fmt.Errorf("error loading eliminated player: %v", err)
	}

	log.Printf("[RESOLUTION] Game %d: player %s eliminated with %d votes (%s, round %d)",
		gameID, victim.User.Username, topVotes, phase, round)

	err = notifier.Publish(broadcast.GameChannel(gameID), broadcast.EventPlayerEliminated, map[string]interface{}{
		"user_id":  victim.UserID,
		"username": victim.User.Username,
		"phase":    phase,
		"round":    round,
		"votes":    topVotes,
	})
	if err != nil {
		log.Printf("[RESOLUTION-ERROR] Game %d: error publishing elimination: %v", gameID, err)
	}

	return &victim, nil
}

// checkGameEnd applies the faction win conditions over the living players
func checkGameEnd(db *gorm.DB, gameID uint) (bool, string, error) {
	var wolves, villagers int64

	err := db.Model(&models.GamePlayer{}).
		Where("game_id = ? AND status = ? AND role = ?",
			gameID, game_constants.PlayerStatusPlaying, game_constants.RoleWolf).
		Count(&wolves).Error
	if err != nil {
		return false, "", fmt.Errorf("error counting wolves: %v", err)
	}

	err = db.Model(&models.GamePlayer{}).
		Where("game_id = ? AND status = ? AND role <> ?",
			gameID, game_constants.PlayerStatusPlaying, game_constants.RoleWolf).
		Count(&villagers).Error
	if err != nil {
		return false, "", fmt.Errorf("error counting villagers: %v", err)
	}

	if wolves == 0 {
		return true, "village", nil
	}
	if wolves >= villagers {
		return true, "wolves", nil
	}
	return false, "", nil
}

// finishGame terminally closes a game. Finished games are never touched by
// the scheduler again.
func finishGame(db *gorm.DB, notifier broadcast.Notifier, gameID uint, winner string, lastEliminated *models.GamePlayer) error {
	err := db.Model(&models.Game{}).
		Where("id = ? AND status = ?", gameID, game_constants.GameStatusInProgress).
		Update("status", game_constants.GameStatusFinished).Error
	if err != nil {
		return fmt.Errorf("error finishing game: %v", err)
	}

	log.Printf("[SCHEDULER] Game %d finished, %s win", gameID, winner)

	payload := map[string]interface{}{"winner": winner}
	if lastEliminated != nil {
		payload["last_eliminated"] = lastEliminated.User.Username
	}

	err = notifier.Publish(broadcast.GameChannel(gameID), broadcast.EventGameFinished, payload)
	if err != nil {
		return fmt.Errorf("error publishing game end: %v", err)
	}
	return nil
}
