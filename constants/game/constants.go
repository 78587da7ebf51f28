package game_constants

import "time"

// Phase names, stored verbatim in games.current_phase
const (
	PhaseDay   = "day"
	PhaseNight = "night"
)

// Fixed phase durations. The server clock is authoritative, clients only
// render a countdown from the broadcast timestamps.
const (
	DayPhaseDuration   = 180 * time.Second
	NightPhaseDuration = 120 * time.Second
)

// Game lifecycle status
const (
	GameStatusLobby      = "lobby"
	GameStatusInProgress = "in_progress"
	GameStatusFinished   = "finished"
)

// Player status inside a game
const (
	PlayerStatusWaiting      = "waiting"
	PlayerStatusReady        = "ready"
	PlayerStatusPlaying      = "playing"
	PlayerStatusDead         = "dead"
	PlayerStatusDisconnected = "disconnected"
)

// Roles. RoleWolf is the faction that votes at night
const (
	RoleWolf     = "lobo"
	RoleVillager = "aldeano"
)

// One wolf per WolfRatio players, at least one
const WolfRatio = 4

const DefaultMinPlayers = 5
const DefaultMaxPlayers = 12

// Scheduler interval when the API server runs the tick in-process
const SchedulerTickInterval = 5 * time.Second

// Chat history kept per game in Redis
const MaxChatHistory = 200
