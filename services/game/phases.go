package game

import (
	"time"

	game_constants "Lobera/constants/game"
)

// PhaseDuration returns the fixed duration of a phase. Unknown phases fall
// back to the day duration so a corrupt row can never make a game expire
// instantly.
func PhaseDuration(phase string) time.Duration {
	switch phase {
	case game_constants.PhaseNight:
		return game_constants.NightPhaseDuration
	default:
		return game_constants.DayPhaseDuration
	}
}

// NextPhase toggles day <-> night
func NextPhase(phase string) string {
	if phase == game_constants.PhaseDay {
		return game_constants.PhaseNight
	}
	return game_constants.PhaseDay
}

// PhaseElapsed computes how long the current phase has been running
func PhaseElapsed(now, startedAt time.Time) time.Duration {
	return now.Sub(startedAt)
}

// PhaseRemaining computes how much of the current phase is left, floored at 0
func PhaseRemaining(now time.Time, phase string, startedAt time.Time) time.Duration {
	remaining := PhaseDuration(phase) - PhaseElapsed(now, startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PhaseExpired reports whether the phase timer has run out
func PhaseExpired(now time.Time, phase string, startedAt time.Time) bool {
	return PhaseElapsed(now, startedAt) >= PhaseDuration(phase)
}
