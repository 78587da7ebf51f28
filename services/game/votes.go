package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteEntry is a single vote as exposed to players
type VoteEntry struct {
	VoterID  uint `json:"voter_id"`
	TargetID uint `json:"target_id"`
}

// VoteSummary is the aggregate voting state of the current phase/round
type VoteSummary struct {
	Votes       []VoteEntry `json:"votes"`
	VotedCount  int         `json:"voted_count"`
	TotalVoters int         `json:"total_voters"`
	AllVoted    bool        `json:"all_voted"`
	OwnVote     *VoteEntry  `json:"own_vote"`
}

func isWolf(p *models.GamePlayer) bool {
	return p.Role != nil && *p.Role == game_constants.RoleWolf
}

// findInProgressGame loads a game and rejects anything not currently running
func findInProgressGame(db *gorm.DB, gameID uint) (*models.Game, error) {
	var g models.Game
	if err := db.Where("id = ?", gameID).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Game not found")
		}
		return nil, err
	}
	if g.Status != game_constants.GameStatusInProgress {
		return nil, errConflict("Game is not in progress")
	}
	return &g, nil
}

func findMember(db *gorm.DB, gameID, userID uint) (*models.GamePlayer, error) {
	var member models.GamePlayer
	err := db.Where("game_id = ? AND user_id = ?", gameID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// EligibleVoters returns the players allowed to vote in the game's current
// phase: every playing member by day, only the wolves by night.
func EligibleVoters(db *gorm.DB, g *models.Game) ([]models.GamePlayer, error) {
	query := db.Where("game_id = ? AND status = ?", g.ID, game_constants.PlayerStatusPlaying)
	if g.CurrentPhase == game_constants.PhaseNight {
		query = query.Where("role = ?", game_constants.RoleWolf)
	}

	var voters []models.GamePlayer
	if err := query.Find(&voters).Error; err != nil {
		return nil, fmt.Errorf("error fetching eligible voters: %v", err)
	}
	return voters, nil
}

// checkVote runs the cast-vote precondition chain, in order. Each failing
// condition maps to its own RuleError so the HTTP layer can answer precisely.
func checkVote(db *gorm.DB, gameID, voterID, targetID uint) (*models.Game, error) {
	g, err := findInProgressGame(db, gameID)
	if err != nil {
		return nil, err
	}

	voter, err := findMember(db, gameID, voterID)
	if err != nil {
		return nil, err
	}
	if voter == nil || voter.Status != game_constants.PlayerStatusPlaying {
		return nil, errForbidden("You are not a playing member of this game")
	}

	target, err := findMember(db, gameID, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errNotFound("Target player not found in this game")
	}
	if target.Status != game_constants.PlayerStatusPlaying {
		return nil, errBadRequest("Target is not an active player")
	}

	if g.CurrentPhase == game_constants.PhaseNight {
		if !isWolf(voter) {
			return nil, errForbidden("Only wolves vote at night")
		}
		if isWolf(target) {
			return nil, errBadRequest("Wolves cannot target each other")
		}
	}

	return g, nil
}

// CastVote records a vote in the current phase/round. Voting again replaces
// the previous target: the upsert is keyed on the composite uniqueness
// constraint of game_votes, so last-write-wins is guaranteed by the storage
// layer even under concurrent re-votes.
func CastVote(db *gorm.DB, gameID, voterID, targetID uint) error {
	g, err := checkVote(db, gameID, voterID, targetID)
	if err != nil {
		return err
	}

	vote := models.GameVote{
		GameID:   gameID,
		VoterID:  voterID,
		Phase:    g.CurrentPhase,
		Round:    g.CurrentRound,
		TargetID: targetID,
		CastAt:   time.Now(),
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "game_id"}, {Name: "voter_id"}, {Name: "phase"}, {Name: "round"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"target_id", "cast_at"}),
	}).Create(&vote).Error

	if err != nil {
		return fmt.Errorf("error saving vote: %v", err)
	}

	log.Printf("[VOTE] Game %d: user %d voted for %d (%s, round %d)",
		gameID, voterID, targetID, g.CurrentPhase, g.CurrentRound)
	return nil
}

// AgentVote applies the exact same rules as CastVote but stays silent, it
// only reports whether the vote went through. Used for non-human players.
func AgentVote(db *gorm.DB, gameID, voterID, targetID uint) bool {
	if err := CastVote(db, gameID, voterID, targetID); err != nil {
		log.Printf("[AGENT-VOTE] Game %d: vote by agent %d rejected: %v", gameID, voterID, err)
		return false
	}
	return true
}

// GetVotes builds the tally view for the current phase/round. At night the
// vote list is secret from non-wolves, but the aggregate counts always come
// from the real eligible-voter set, and a player can always see their own
// vote.
func GetVotes(db *gorm.DB, gameID, userID uint) (*VoteSummary, error) {
	g, err := findInProgressGame(db, gameID)
	if err != nil {
		return nil, err
	}

	caller, err := findMember(db, gameID, userID)
	if err != nil {
		return nil, err
	}
	if caller == nil || !isActiveStatus(caller.Status) {
		return nil, errForbidden("You are not a player in this game")
	}

	var votes []models.GameVote
	err = db.Where("game_id = ? AND phase = ? AND round = ?",
		g.ID, g.CurrentPhase, g.CurrentRound).Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching votes: %v", err)
	}

	voters, err := EligibleVoters(db, g)
	if err != nil {
		return nil, err
	}

	summary := &VoteSummary{
		Votes:       []VoteEntry{},
		VotedCount:  len(votes),
		TotalVoters: len(voters),
		AllVoted:    len(votes) == len(voters),
	}

	hidden := g.CurrentPhase == game_constants.PhaseNight && !isWolf(caller)
	for _, v := range votes {
		entry := VoteEntry{VoterID: v.VoterID, TargetID: v.TargetID}
		if v.VoterID == userID {
			own := entry
			summary.OwnVote = &own
		}
		if !hidden {
			summary.Votes = append(summary.Votes, entry)
		}
	}

	return summary, nil
}

func isActiveStatus(status string) bool {
	switch status {
	case game_constants.PlayerStatusWaiting,
		game_constants.PlayerStatusReady,
		game_constants.PlayerStatusPlaying:
		return true
	}
	return false
}
