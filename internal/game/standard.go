// internal/game/standard.go
package game

import (
	"log"

	"github.com/google/uuid"

	"github.com/trolleyparty/trolley/internal/prompts"
)

// StandardEngine runs the instant-vote mode: everyone votes live, the host
// ends the round, no scoring. Purely descriptive polling for spectacle.
type StandardEngine struct {
	room *Room
}

// NewStandardEngine builds the instant-vote engine for a room.
func NewStandardEngine(r *Room) *StandardEngine {
	return &StandardEngine{room: r}
}

// StartRound sets the prompt, zeroes the tallies and opens voting.
// Assumes lock is held.
func (e *StandardEngine) StartRound(p *prompts.Prompt) {
	st := e.room.State
	st.CurrentPrompt = p
	st.Votes = VoteCounts{}
	st.Phase = PhaseVoting
	e.room.publishStateLocked()
}

// HandleAction routes the single standard-mode action.
// Assumes lock is held.
func (e *StandardEngine) HandleAction(connID uuid.UUID, action string, choice Choice) {
	if action != ActionVote {
		return
	}
	e.handleVote(connID, choice)
}

// handleVote increments the matching counter and republishes the full state,
// so every vote is visible live on the host screen.
// Assumes lock is held.
func (e *StandardEngine) handleVote(connID uuid.UUID, choice Choice) {
	st := e.room.State
	if st.Phase != PhaseVoting {
		return
	}
	switch choice {
	case ChoicePull:
		st.Votes.Pull++
	case ChoiceWait:
		st.Votes.Wait++
	default:
		log.Printf("Room %s: ignoring vote with unknown choice %q from %s", e.room.Code, choice, connID)
		return
	}
	e.room.logAction(connID, "vote", map[string]interface{}{"choice": choice})
	e.room.publishStateLocked()
}

// EndRound is host-triggered in this mode; no timer drives it and nothing is
// scored. Assumes lock is held.
func (e *StandardEngine) EndRound() {
	st := e.room.State
	if st.Phase != PhaseVoting {
		return
	}
	st.Phase = PhaseResults
	e.room.publishStateLocked()
}

// HandleDisconnect is a no-op: standard rounds have no completion denominator.
func (e *StandardEngine) HandleDisconnect(connID uuid.UUID) {}

// Cleanup is a no-op; this engine owns no timers.
func (e *StandardEngine) Cleanup() {}

// Reset is a no-op; this engine keeps no per-game state.
func (e *StandardEngine) Reset() {}
