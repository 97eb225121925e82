// internal/game/room.go
package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trolleyparty/trolley/internal/cache"
	"github.com/trolleyparty/trolley/internal/prompts"
)

// Room is one isolated game session. It exclusively owns its GameState and
// one engine instance per mode; the active engine follows settings.mode.
//
// All mutations - inbound actions, timer ticks, disconnects - are serialized
// under Mu. Rooms are mutually independent: no cross-room shared mutable
// state exists, which is what makes concurrent rooms safe.
type Room struct {
	Code string
	Mu   sync.Mutex

	State   *GameState
	engines map[string]ModeEngine

	// BroadcastFn fans an event out to every connection subscribed to this
	// room. Installed by the transport layer; nil-safe.
	BroadcastFn func(ev Event)

	CreatedAt   time.Time
	actionIndex int
}

// NewRoom builds a lobby-phase room with both mode engines wired to it.
func NewRoom(code string) *Room {
	r := &Room{
		Code:      code,
		State:     NewGameState(),
		CreatedAt: time.Now(),
	}
	r.engines = map[string]ModeEngine{
		ModeStandard: NewStandardEngine(r),
		ModeHotSeat:  NewHotSeatEngine(r),
	}
	return r
}

// engineLocked returns the engine matching settings.mode.
// Assumes lock is held.
func (r *Room) engineLocked() ModeEngine {
	return r.engines[r.State.Settings.Mode]
}

// AddPlayer registers a phone in the room. Idempotent for a connection that
// already joined: no duplicate Player is created.
func (r *Room) AddPlayer(connID uuid.UUID, name string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State.playerByID(connID) != nil {
		return
	}
	r.State.Players = append(r.State.Players, &Player{ID: connID, Name: name})
	r.logAction(connID, "player_join", map[string]interface{}{"name": name})
	r.publishStateLocked()
}

// UpdateSettings merges a partial settings update. Only allowed in the
// lobby; anywhere else it is a silent no-op.
func (r *Room) UpdateSettings(patch SettingsPatch) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State.Phase != PhaseLobby {
		return
	}
	s := &r.State.Settings
	if patch.Mode != nil && (*patch.Mode == ModeStandard || *patch.Mode == ModeHotSeat) {
		s.Mode = *patch.Mode
	}
	if patch.Vibe != nil {
		s.Vibe = *patch.Vibe
	}
	if patch.Timer != nil && *patch.Timer > 0 {
		s.Timer = *patch.Timer
	}
	if patch.Rounds != nil && *patch.Rounds > 0 {
		s.Rounds = *patch.Rounds
	}
	if patch.Anon != nil {
		s.Anon = *patch.Anon
	}
	r.publishStateLocked()
}

// StartGame builds the prompt deck, resets scores and hands round 1 to the
// active engine. Requires the lobby phase and at least one player.
func (r *Room) StartGame() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	st := r.State
	if st.Phase != PhaseLobby {
		return
	}
	if len(st.Players) == 0 {
		log.Printf("Room %s: startGame with no players, ignoring", r.Code)
		return
	}

	deck := prompts.Deck(st.Settings.Vibe)
	if len(deck) == 0 {
		log.Printf("Room %s: no prompts match vibe %q, cannot start", r.Code, st.Settings.Vibe)
		return
	}
	st.PromptDeck = deck
	st.RoundIndex = 0
	for _, p := range st.Players {
		p.Score = 0
		p.LastRoundPoints = 0
	}
	r.logAction(uuid.Nil, "game_start", map[string]interface{}{
		"mode":    st.Settings.Mode,
		"players": len(st.Players),
		"deck":    len(deck),
	})
	r.engineLocked().StartRound(deck[0])
}

// SubmitAction forwards a player action to the active engine.
func (r *Room) SubmitAction(connID uuid.UUID, action string, choice Choice) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.engineLocked().HandleAction(connID, action, choice)
}

// ForceEndHotSeat lets the host cut the guessing window short.
func (r *Room) ForceEndHotSeat() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State.Settings.Mode != ModeHotSeat || r.State.Phase != PhaseHotSeatGuess {
		return
	}
	r.engineLocked().EndRound()
}

// EndStandardRound closes voting in standard mode.
func (r *Room) EndStandardRound() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State.Settings.Mode != ModeStandard {
		return
	}
	r.engineLocked().EndRound()
}

// NextRound advances manually from a finished round. The engine's timers are
// cancelled first so a pending auto-advance cannot double-fire.
func (r *Room) NextRound() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State.Phase != PhaseResults && r.State.Phase != PhaseRoundSummary {
		return
	}
	r.engineLocked().Cleanup()
	r.advanceRoundLocked()
}

// advanceRoundLocked moves the cursor and either starts the next round or
// ends the game. Also the landing point for the hot-seat auto-advance timer.
// Assumes lock is held.
func (r *Room) advanceRoundLocked() {
	st := r.State
	st.RoundIndex++
	limit := st.Settings.Rounds
	if len(st.PromptDeck) < limit {
		limit = len(st.PromptDeck)
	}
	if st.RoundIndex < limit {
		r.engineLocked().StartRound(st.PromptDeck[st.RoundIndex])
		return
	}
	st.Phase = PhaseGameOver
	r.logAction(uuid.Nil, "game_over", nil)
	r.publishStateLocked()
}

// Reset returns the room to the lobby from any phase. Players stay; scores,
// round state and rotation memory are wiped and the intro is re-armed.
func (r *Room) Reset() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, e := range r.engines {
		e.Reset()
	}
	st := r.State
	st.Phase = PhaseLobby
	for _, p := range st.Players {
		p.Score = 0
		p.LastRoundPoints = 0
	}
	st.PromptDeck = nil
	st.RoundIndex = 0
	st.CurrentPrompt = nil
	st.HotSeatPlayerID = uuid.Nil
	st.HotSeatChoice = ""
	st.Guesses = make(map[uuid.UUID]Choice)
	st.Votes = VoteCounts{}
	st.RoundResult = nil
	st.TimeLeft = 0
	r.logAction(uuid.Nil, "game_reset", nil)
	r.publishStateLocked()
}

// HandleDisconnect removes a departing player and lets the active engine
// observe the roster shrink. The player's pending guess is discarded; the
// smaller denominator can complete a hot-seat round on its own.
func (r *Room) HandleDisconnect(connID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	st := r.State
	found := false
	for i, p := range st.Players {
		if p.ID == connID {
			st.Players = append(st.Players[:i], st.Players[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return // host or spectator connection, no roster change
	}
	delete(st.Guesses, connID)
	r.logAction(connID, "player_disconnect", nil)
	r.engineLocked().HandleDisconnect(connID)
	r.publishStateLocked()
}

// Teardown cancels every engine timer. Called by the registry when the room
// is evicted.
func (r *Room) Teardown() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, e := range r.engines {
		e.Cleanup()
	}
}

// Snapshot returns a copy of the state safe to marshal without the lock.
func (r *Room) Snapshot() *GameState {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.State.clone()
}

// publishStateLocked broadcasts the full-state snapshot every mutating call
// ends with. Assumes lock is held.
func (r *Room) publishStateLocked() {
	r.fireEvent(Event{Type: EventUpdateState, State: r.State.clone()})
}

// fireEvent hands an event to the transport fan-out, if installed.
// Assumes lock is held.
func (r *Room) fireEvent(ev Event) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	} else {
		log.Printf("Warning: BroadcastFn is nil for room %s, dropping event %s", r.Code, ev.Type)
	}
}

// logAction pushes an action record onto the historian queue, if redis is
// connected. Best-effort and asynchronous; gameplay never waits on it.
// Assumes lock is held.
func (r *Room) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	if !cache.Enabled() {
		return
	}
	r.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.RoomActionRecord{
		RoomCode:      r.Code,
		ActionIndex:   r.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoomAction(ctx, rec); err != nil {
			log.Printf("Room %s: failed to publish action record: %v", r.Code, err)
		}
	}()
}
