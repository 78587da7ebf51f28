package game

import (
	"net/http"
	"testing"

	game_constants "Lobera/constants/game"
	models "Lobera/models/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countVotes(t *testing.T, db *gorm.DB, gameID uint) int64 {
	var count int64
	require.NoError(t, db.Model(&models.GameVote{}).
		Where("game_id = ?", gameID).Count(&count).Error)
	return count
}

func TestCastVoteUpsertsSameBallot(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseDay, 1, 1, 4)

	require.NoError(t, CastVote(db, g.ID, users[1].ID, users[2].ID))
	require.NoError(t, CastVote(db, g.ID, users[1].ID, users[3].ID))

	assert.Equal(t, int64(1), countVotes(t, db, g.ID))

	var vote models.GameVote
	require.NoError(t, db.Where("game_id = ? AND voter_id = ?", g.ID, users[1].ID).
		First(&vote).Error)
	assert.Equal(t, users[3].ID, vote.TargetID)
	assert.Equal(t, game_constants.PhaseDay, vote.Phase)
	assert.Equal(t, 1, vote.Round)
}

func TestCastVoteSeparateBallotsPerPhaseRound(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseDay, 1, 1, 4)

	require.NoError(t, CastVote(db, g.ID, users[1].ID, users[2].ID))

	// Next round, same voter: a second row, not an overwrite
	require.NoError(t, db.Model(&models.Game{}).Where("id = ?", g.ID).
		Update("current_round", 2).Error)
	require.NoError(t, CastVote(db, g.ID, users[1].ID, users[2].ID))

	assert.Equal(t, int64(2), countVotes(t, db, g.ID))
}

func TestCastVoteGameChecks(t *testing.T) {
	db := setupTestDB(t)

	err := CastVote(db, 999, 1, 2)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusNotFound, ruleErr.Status)

	g, users := createTestGame(t, db, game_constants.PhaseDay, 1, 1, 4)
	require.NoError(t, db.Model(&models.Game{}).Where("id = ?", g.ID).
		Update("status", game_constants.GameStatusFinished).Error)

	err = CastVote(db, g.ID, users[1].ID, users[2].ID)
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusConflict, ruleErr.Status)
	assert.Equal(t, int64(0), countVotes(t, db, g.ID))
}

func TestCastVoteRequiresPlayingVoterAndTarget(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseDay, 1, 1, 4)
	outsider := createTestUser(t, db, "outsider")

	var ruleErr *RuleError

	err := CastVote(db, g.ID, outsider.ID, users[1].ID)
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusForbidden, ruleErr.Status)

	err = CastVote(db, g.ID, users[1].ID, outsider.ID)
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusNotFound, ruleErr.Status)

	// A dead player is neither a voter nor a target
	require.NoError(t, db.Model(&models.GamePlayer{}).
		Where("game_id = ? AND user_id = ?", g.ID, users[2].ID).
		Update("status", game_constants.PlayerStatusDead).Error)

	err = CastVote(db, g.ID, users[2].ID, users[1].ID)
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusForbidden, ruleErr.Status)

	err = CastVote(db, g.ID, users[1].ID, users[2].ID)
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusBadRequest, ruleErr.Status)

	assert.Equal(t, int64(0), countVotes(t, db, g.ID))
}

func TestNightVotingIsWolvesOnly(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseNight, 1, 2, 3)
	// users[0], users[1] are wolves

	var ruleErr *RuleError

	// A villager cannot vote at night, and no row is created
	err := CastVote(db, g.ID, users[2].ID, users[3].ID)
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusForbidden, ruleErr.Status)
	assert.Equal(t, int64(0), countVotes(t, db, g.ID))

	// A wolf cannot target another wolf
	err = CastVote(db, g.ID, users[0].ID, users[1].ID)
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusBadRequest, ruleErr.Status)

	// A wolf voting a villager goes through
	require.NoError(t, CastVote(db, g.ID, users[0].ID, users[2].ID))
	assert.Equal(t, int64(1), countVotes(t, db, g.ID))
}

func TestAgentVoteIsSilent(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseNight, 1, 1, 3)

	// Villager agent at night: rejected, just false
	assert.False(t, AgentVote(db, g.ID, users[1].ID, users[2].ID))
	// Wolf agent: same rules as a human
	assert.True(t, AgentVote(db, g.ID, users[0].ID, users[2].ID))
}

func TestGetVotesDayTally(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseDay, 1, 1, 3)

	require.NoError(t, CastVote(db, g.ID, users[0].ID, users[1].ID))
	require.NoError(t, CastVote(db, g.ID, users[1].ID, users[0].ID))

	summary, err := GetVotes(db, g.ID, users[2].ID)
	require.NoError(t, err)

	assert.Len(t, summary.Votes, 2)
	assert.Equal(t, 2, summary.VotedCount)
	assert.Equal(t, 4, summary.TotalVoters)
	assert.False(t, summary.AllVoted)
	assert.Nil(t, summary.OwnVote)

	// The last two ballots come in: all_voted flips exactly then
	require.NoError(t, CastVote(db, g.ID, users[2].ID, users[0].ID))
	require.NoError(t, CastVote(db, g.ID, users[3].ID, users[0].ID))

	summary, err = GetVotes(db, g.ID, users[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.VotedCount)
	assert.True(t, summary.AllVoted)
	require.NotNil(t, summary.OwnVote)
	assert.Equal(t, users[0].ID, summary.OwnVote.TargetID)
}

func TestGetVotesNightSecrecy(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseNight, 1, 2, 3)
	// users[0], users[1] wolves

	require.NoError(t, CastVote(db, g.ID, users[0].ID, users[2].ID))

	// A villager sees no vote list, but the real aggregates
	summary, err := GetVotes(db, g.ID, users[3].ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Votes)
	assert.Equal(t, 1, summary.VotedCount)
	assert.Equal(t, 2, summary.TotalVoters) // only the wolves are eligible
	assert.False(t, summary.AllVoted)

	// A wolf sees everything
	summary, err = GetVotes(db, g.ID, users[1].ID)
	require.NoError(t, err)
	assert.Len(t, summary.Votes, 1)

	// Second wolf votes: all_voted for the night ballot
	require.NoError(t, CastVote(db, g.ID, users[1].ID, users[2].ID))
	summary, err = GetVotes(db, g.ID, users[0].ID)
	require.NoError(t, err)
	assert.True(t, summary.AllVoted)
	require.NotNil(t, summary.OwnVote)
	assert.Equal(t, users[2].ID, summary.OwnVote.TargetID)
}

func TestGetVotesAllVotedTracksShrunkenEligibleSet(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseDay, 1, 1, 2)

	require.NoError(t, CastVote(db, g.ID, users[0].ID, users[1].ID))
	require.NoError(t, CastVote(db, g.ID, users[1].ID, users[0].ID))

	// A voter and the remaining non-voter drop out mid-phase: more votes on
	// the ledger than eligible voters left
	for _, userID := range []uint{users[1].ID, users[2].ID} {
		require.NoError(t, db.Model(&models.GamePlayer{}).
			Where("game_id = ? AND user_id = ?", g.ID, userID).
			Update("status", game_constants.PlayerStatusDisconnected).Error)
	}

	summary, err := GetVotes(db, g.ID, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.VotedCount)
	assert.Equal(t, 1, summary.TotalVoters)
	assert.False(t, summary.AllVoted)
}

func TestGetVotesAllVotedWhenNobodyIsEligible(t *testing.T) {
	db := setupTestDB(t)
	g, users := createTestGame(t, db, game_constants.PhaseNight, 1, 1, 2)

	// The only wolf disconnects: zero eligible voters, zero votes
	require.NoError(t, db.Model(&models.GamePlayer{}).
		Where("game_id = ? AND user_id = ?", g.ID, users[0].ID).
		Update("status", game_constants.PlayerStatusDisconnected).Error)

	summary, err := GetVotes(db, g.ID, users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.VotedCount)
	assert.Equal(t, 0, summary.TotalVoters)
	assert.True(t, summary.AllVoted)
}

func TestGetVotesRequiresMembership(t *testing.T) {
	db := setupTestDB(t)
	g, _ := createTestGame(t, db, game_constants.PhaseDay, 1, 1, 3)
	outsider := createTestUser(t, db, "watcher")

	_, err := GetVotes(db, g.ID, outsider.ID)
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, http.StatusForbidden, ruleErr.Status)
}
