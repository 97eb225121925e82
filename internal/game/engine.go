// internal/game/engine.go
package game

import (
	"github.com/google/uuid"

	"github.com/trolleyparty/trolley/internal/prompts"
)

// Inbound action names routed to the active ModeEngine.
const (
	ActionHotSeatChoice = "hotSeatChoice"
	ActionGuess         = "guess"
	ActionVote          = "vote"
)

// EventType is an enum-like type for events broadcast to a room's clients.
type EventType string

const (
	// EventUpdateState carries a full GameState snapshot. Idempotent: a
	// client can always fully re-render from it.
	EventUpdateState EventType = "updateState"

	// EventTimerUpdate is a lightweight tick with seconds remaining. It does
	// not replace the full snapshot.
	EventTimerUpdate EventType = "timerUpdate"

	// EventVoterUpdate is a lightweight "N of M voted" progress event.
	EventVoterUpdate EventType = "voterUpdate"

	EventGameCreated EventType = "gameCreated"
	EventQRCodeData  EventType = "qrCodeData"
	EventError       EventType = "error"
)

// Event is the broadcast envelope. State is set only for updateState and
// gameCreated; everything else rides in Payload.
type Event struct {
	Type    EventType              `json:"type"`
	State   *GameState             `json:"state,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ModeEngine is the per-room round logic for one game mode. Exactly two
// implementations exist: StandardEngine and HotSeatEngine. The active engine
// is selected by settings.mode and may only change from the lobby phase.
//
// Every method assumes the owning room's lock is held by the caller.
type ModeEngine interface {
	// StartRound begins a round on the given prompt. With zero players it
	// logs and does nothing (caller precondition violation, not an error).
	StartRound(p *prompts.Prompt)

	// HandleAction routes a player action ("vote", "guess", "hotSeatChoice").
	// Actions that are invalid for the current phase or sender are silently
	// ignored; a misbehaving client must never crash the room.
	HandleAction(connID uuid.UUID, action string, choice Choice)

	// EndRound finishes the current round. Must be idempotent: a second call
	// after the phase has already moved on is a no-op.
	EndRound()

	// HandleDisconnect observes a roster shrink after the room removed the
	// player. For hot-seat this recomputes the completion denominator, which
	// can itself finish the round.
	HandleDisconnect(connID uuid.UUID)

	// Cleanup cancels every timer the engine owns. Safe to call at any time,
	// including when no timers are active.
	Cleanup()

	// Reset clears per-game engine state (rotation memory, intro flag) for
	// an explicit game reset.
	Reset()
}
