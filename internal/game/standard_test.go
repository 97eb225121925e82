// internal/game/standard_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStandardRoom(t *testing.T, n int) (*Room, []*Player, *mockBroadcaster) {
	t.Helper()
	r := NewRoom("TEST")
	mb := &mockBroadcaster{}
	r.BroadcastFn = mb.fn
	for i := 0; i < n; i++ {
		r.AddPlayer(uuid.New(), string(rune('A'+i)))
	}
	return r, r.State.Players, mb
}

func TestStandardRoundVoting(t *testing.T) {
	r, players, mb := setupStandardRoom(t, 3)

	r.StartGame()
	require.Equal(t, PhaseVoting, phaseOf(r))

	r.SubmitAction(players[0].ID, ActionVote, ChoicePull)
	r.SubmitAction(players[1].ID, ActionVote, ChoicePull)
	r.SubmitAction(players[2].ID, ActionVote, ChoiceWait)

	r.Mu.Lock()
	assert.Equal(t, 2, r.State.Votes.Pull)
	assert.Equal(t, 1, r.State.Votes.Wait)
	r.Mu.Unlock()

	// Every vote republishes the full snapshot so the host screen updates live.
	assert.GreaterOrEqual(t, mb.countOfType(EventUpdateState), 4)

	// No scoring in this mode.
	r.EndStandardRound()
	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, PhaseResults, r.State.Phase)
	for _, p := range players {
		assert.Equal(t, 0, p.Score)
	}
}

func TestStandardVoteOutsideVotingPhaseIgnored(t *testing.T) {
	r, players, _ := setupStandardRoom(t, 2)

	// Still in the lobby: votes must not count.
	r.SubmitAction(players[0].ID, ActionVote, ChoicePull)
	r.Mu.Lock()
	assert.Equal(t, 0, r.State.Votes.Pull)
	r.Mu.Unlock()

	r.StartGame()
	r.EndStandardRound()
	require.Equal(t, PhaseResults, phaseOf(r))

	r.SubmitAction(players[0].ID, ActionVote, ChoicePull)
	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, 0, r.State.Votes.Pull)
}

func TestStandardUnknownChoiceIgnored(t *testing.T) {
	r, players, _ := setupStandardRoom(t, 1)
	r.StartGame()

	r.SubmitAction(players[0].ID, ActionVote, Choice("lever"))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, VoteCounts{}, r.State.Votes)
}

func TestStandardNextRoundResetsTallies(t *testing.T) {
	r, players, _ := setupStandardRoom(t, 2)
	r.StartGame()
	r.SubmitAction(players[0].ID, ActionVote, ChoicePull)
	r.EndStandardRound()

	r.NextRound()

	r.Mu.Lock()
	defer r.Mu.Unlock()
	require.Equal(t, PhaseVoting, r.State.Phase)
	assert.Equal(t, 1, r.State.RoundIndex)
	assert.Equal(t, VoteCounts{}, r.State.Votes)
}

func TestStandardEndRoundOnlyFromVoting(t *testing.T) {
	r, _, _ := setupStandardRoom(t, 2)

	// Lobby phase: host mashing End Round does nothing.
	r.EndStandardRound()
	assert.Equal(t, PhaseLobby, phaseOf(r))
}
