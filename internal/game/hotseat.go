// internal/game/hotseat.go
package game

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/trolleyparty/trolley/internal/prompts"
)

// Default hot-seat timings. Tests shorten tickEvery to avoid real waits.
const (
	introSeconds     = 10
	autoAdvanceDelay = 10 * time.Second
)

// HotSeatEngine runs the timed hidden-choice mode: one rotating player
// secretly picks pull or wait, everyone else guesses inside a countdown
// window, correct guessers get 100 points, then the round summary
// auto-advances.
//
// The engine owns up to three timers (intro tick, guess tick, auto-advance
// one-shot). Every timer callback re-acquires the room lock and validates the
// seq generation counter before touching state, so a tick that fires after
// the phase moved on is a no-op instead of corrupting the new round.
type HotSeatEngine struct {
	room *Room

	// used holds connection IDs already picked this pass. It persists across
	// rounds and is cleared only on a full pass or an explicit game reset,
	// guaranteeing everyone sits in the hot seat before anyone repeats.
	used       map[uuid.UUID]bool
	introShown bool

	// seq invalidates outstanding timer callbacks. Incremented whenever the
	// engine leaves a phase that owns a timer.
	seq int

	introTimer    *time.Timer
	guessTimer    *time.Timer
	autoNextTimer *time.Timer

	tickEvery        time.Duration
	autoAdvanceAfter time.Duration

	rnd *rand.Rand
}

// NewHotSeatEngine builds the hot-seat engine for a room.
func NewHotSeatEngine(r *Room) *HotSeatEngine {
	return &HotSeatEngine{
		room:             r,
		used:             make(map[uuid.UUID]bool),
		tickEvery:        time.Second,
		autoAdvanceAfter: autoAdvanceDelay,
		rnd:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartRound clears per-round state, rotates the hot seat and enters either
// the one-time intro or the secret phase. Assumes lock is held.
func (e *HotSeatEngine) StartRound(p *prompts.Prompt) {
	e.Cleanup()

	st := e.room.State
	st.CurrentPrompt = p
	st.Guesses = make(map[uuid.UUID]Choice)
	st.HotSeatChoice = ""
	st.RoundResult = nil

	picked := e.rotate()
	if picked == nil {
		log.Printf("Room %s: %v, round cannot start", e.room.Code, ErrNoEligiblePlayers)
		return
	}
	st.HotSeatPlayerID = picked.ID
	e.used[picked.ID] = true
	e.room.logAction(picked.ID, "hotseat_pick", map[string]interface{}{"round": st.RoundIndex})

	if !e.introShown {
		e.introShown = true
		st.Phase = PhaseHotSeatIntro
		st.TimeLeft = introSeconds
		e.room.publishStateLocked()
		e.scheduleTick(&e.introTimer, e.seq, e.beginSecretPhase)
		return
	}
	e.beginSecretPhase()
}

// rotate picks uniformly at random from the players not yet used this pass.
// When the pass is exhausted the used set is cleared and the full roster
// becomes eligible again. Returns nil with no players. Assumes lock is held.
func (e *HotSeatEngine) rotate() *Player {
	st := e.room.State
	candidates := make([]*Player, 0, len(st.Players))
	for _, p := range st.Players {
		if !e.used[p.ID] {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		e.used = make(map[uuid.UUID]bool)
		candidates = append(candidates, st.Players...)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[e.rnd.Intn(len(candidates))]
}

// beginSecretPhase moves to the hidden-choice phase. Assumes lock is held.
func (e *HotSeatEngine) beginSecretPhase() {
	e.room.State.Phase = PhaseHotSeatSecret
	e.room.publishStateLocked()
}

// HandleAction routes the two hot-seat actions. Assumes lock is held.
func (e *HotSeatEngine) HandleAction(connID uuid.UUID, action string, choice Choice) {
	switch action {
	case ActionHotSeatChoice:
		e.handleChoice(connID, choice)
	case ActionGuess:
		e.handleGuess(connID, choice)
	}
}

// handleChoice records the hot-seat player's secret pick and opens the
// guessing window. Anyone else submitting is ignored. With one player in the
// room there is nobody to guess, so the round ends immediately.
// Assumes lock is held.
func (e *HotSeatEngine) handleChoice(connID uuid.UUID, choice Choice) {
	st := e.room.State
	if st.Phase != PhaseHotSeatSecret || connID != st.HotSeatPlayerID || !ValidChoice(choice) {
		return
	}
	st.HotSeatChoice = choice
	e.room.logAction(connID, "hotseat_choice", nil)

	if len(st.Players) <= 1 {
		e.EndRound()
		return
	}

	st.Phase = PhaseHotSeatGuess
	st.TimeLeft = st.Settings.Timer
	e.room.publishStateLocked()
	e.publishVoterProgress()
	e.scheduleTick(&e.guessTimer, e.seq, e.EndRound)
}

// handleGuess records or overwrites one player's guess. The hot-seat player
// is ignored if they try. The round ends the instant every eligible player
// has guessed. Assumes lock is held.
func (e *HotSeatEngine) handleGuess(connID uuid.UUID, choice Choice) {
	st := e.room.State
	if st.Phase != PhaseHotSeatGuess || connID == st.HotSeatPlayerID || !ValidChoice(choice) {
		return
	}
	if st.playerByID(connID) == nil {
		return
	}
	st.Guesses[connID] = choice
	e.room.logAction(connID, "guess", nil)
	e.publishVoterProgress()

	if len(st.Guesses) >= st.eligibleGuessers() {
		e.EndRound()
	}
}

// publishVoterProgress emits the lightweight "N of M voted" event.
// Assumes lock is held.
func (e *HotSeatEngine) publishVoterProgress() {
	st := e.room.State
	total := st.eligibleGuessers()
	count := len(st.Guesses)
	remaining := total - count
	if remaining < 0 {
		remaining = 0
	}
	e.room.fireEvent(Event{
		Type: EventVoterUpdate,
		Payload: map[string]interface{}{
			"count":     count,
			"total":     total,
			"remaining": remaining,
		},
	})
}

// EndRound reveals the choice, scores the guessers, publishes the summary
// and arms the auto-advance timer. Guess-count completion and timer expiry
// both land here; whichever fires second finds the phase already moved on
// and does nothing, so a round can never be scored twice.
// Assumes lock is held.
func (e *HotSeatEngine) EndRound() {
	st := e.room.State
	if st.Phase != PhaseHotSeatSecret && st.Phase != PhaseHotSeatGuess {
		return
	}
	e.stopTimersLocked()

	st.Phase = PhaseRoundSummary

	correct := []string{}
	for _, p := range st.Players {
		p.LastRoundPoints = 0
		if p.ID == st.HotSeatPlayerID {
			continue
		}
		// A missing guess counts as incorrect, not an error.
		if g, ok := st.Guesses[p.ID]; ok && g == st.HotSeatChoice {
			p.Score += 100
			p.LastRoundPoints = 100
			correct = append(correct, p.Name)
		}
	}

	hotSeatName := "Unknown"
	if p := st.playerByID(st.HotSeatPlayerID); p != nil {
		hotSeatName = p.Name
	}
	st.RoundResult = &RoundResult{
		HotSeatName:    hotSeatName,
		Choice:         st.HotSeatChoice,
		CorrectPlayers: correct,
	}
	e.room.logAction(st.HotSeatPlayerID, "round_end", map[string]interface{}{
		"choice":  st.HotSeatChoice,
		"correct": len(correct),
	})
	e.room.publishStateLocked()

	// Auto-advance to the next round without host interaction. The seq
	// check makes this a no-op if a manual nextRound or reset got there
	// first.
	seq := e.seq
	e.autoNextTimer = time.AfterFunc(e.autoAdvanceAfter, func() {
		e.room.Mu.Lock()
		defer e.room.Mu.Unlock()
		if e.seq != seq || e.room.State.Phase != PhaseRoundSummary {
			return
		}
		e.room.advanceRoundLocked()
	})
}

// HandleDisconnect reacts to a roster shrink after the room removed the
// player and discarded their pending guess. Assumes lock is held.
func (e *HotSeatEngine) HandleDisconnect(connID uuid.UUID) {
	st := e.room.State
	switch st.Phase {
	case PhaseHotSeatSecret:
		// Nobody can submit the hidden choice once its owner is gone.
		if connID == st.HotSeatPlayerID {
			log.Printf("Room %s: hot-seat player left during secret phase, ending round", e.room.Code)
			e.EndRound()
		}
	case PhaseHotSeatGuess:
		// The denominator shrank; that alone can complete the round.
		if len(st.Guesses) >= st.eligibleGuessers() {
			e.EndRound()
		}
	}
}

// scheduleTick arms a repeating countdown tick. Each fire re-acquires the
// room lock, verifies seq, decrements timeLeft and emits a timerUpdate. At
// zero it runs onZero (with the lock held) instead of re-arming.
// Assumes lock is held when first called.
func (e *HotSeatEngine) scheduleTick(slot **time.Timer, seq int, onZero func()) {
	*slot = time.AfterFunc(e.tickEvery, func() {
		e.room.Mu.Lock()
		defer e.room.Mu.Unlock()
		if e.seq != seq {
			return // stale tick from a phase we already left
		}
		st := e.room.State
		st.TimeLeft--
		e.room.fireEvent(Event{
			Type:    EventTimerUpdate,
			Payload: map[string]interface{}{"timeLeft": st.TimeLeft},
		})
		if st.TimeLeft <= 0 {
			onZero()
			return
		}
		e.scheduleTick(slot, seq, onZero)
	})
}

// stopTimersLocked cancels all owned timers and invalidates outstanding
// callbacks. Assumes lock is held.
func (e *HotSeatEngine) stopTimersLocked() {
	e.seq++
	if e.introTimer != nil {
		e.introTimer.Stop()
		e.introTimer = nil
	}
	if e.guessTimer != nil {
		e.guessTimer.Stop()
		e.guessTimer = nil
	}
	if e.autoNextTimer != nil {
		e.autoNextTimer.Stop()
		e.autoNextTimer = nil
	}
}

// Cleanup cancels every owned timer. Safe with no timers active.
// Assumes lock is held.
func (e *HotSeatEngine) Cleanup() {
	e.stopTimersLocked()
}

// Reset clears rotation memory and re-arms the intro for the next game.
// Assumes lock is held.
func (e *HotSeatEngine) Reset() {
	e.stopTimersLocked()
	e.used = make(map[uuid.UUID]bool)
	e.introShown = false
}
