// internal/game/state.go
package game

import (
	"maps"

	"github.com/google/uuid"

	"github.com/trolleyparty/trolley/internal/prompts"
)

// Phase is the current position of a room in its state machine.
type Phase string

const (
	PhaseLobby          Phase = "lobby"
	PhaseVoting         Phase = "voting"          // standard mode
	PhaseResults        Phase = "results"         // standard mode
	PhaseHotSeatIntro   Phase = "hotseat_intro"   // once per game, 10s explainer
	PhaseHotSeatSecret  Phase = "hotseat_secret"  // hot-seat player chooses in private
	PhaseHotSeatGuess   Phase = "hotseat_guessing"
	PhaseRoundSummary   Phase = "round_summary"
	PhaseGameOver       Phase = "gameover"
)

// Choice is one of the two options on every prompt.
type Choice string

const (
	ChoicePull Choice = "pull"
	ChoiceWait Choice = "wait"
)

// ValidChoice reports whether c is one of the two playable options.
func ValidChoice(c Choice) bool {
	return c == ChoicePull || c == ChoiceWait
}

// Game modes selectable from the lobby.
const (
	ModeStandard = "standard"
	ModeHotSeat  = "hotseat"
)

// Settings holds the room configuration. Mutable only while the room is in
// the lobby phase.
type Settings struct {
	Mode   string `json:"mode"`   // "standard" or "hotseat"
	Vibe   string `json:"vibe"`   // prompt category filter, "all" for everything
	Timer  int    `json:"timer"`  // guess window in seconds (hotseat)
	Rounds int    `json:"rounds"` // number of rounds per game
	Anon   bool   `json:"anon"`   // hide voter names on the host screen
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	Mode   *string `json:"mode,omitempty"`
	Vibe   *string `json:"vibe,omitempty"`
	Timer  *int    `json:"timer,omitempty"`
	Rounds *int    `json:"rounds,omitempty"`
	Anon   *bool   `json:"anon,omitempty"`
}

func defaultSettings() Settings {
	return Settings{
		Mode:   ModeStandard,
		Vibe:   prompts.CategoryAll,
		Timer:  180,
		Rounds: 5,
		Anon:   false,
	}
}

// Player is one joined phone. The ID is the websocket connection identity and
// is only stable for the lifetime of that connection.
type Player struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Score           int       `json:"score"`
	LastRoundPoints int       `json:"lastRoundPoints"`
}

// VoteCounts are the live tallies for a standard-mode round.
type VoteCounts struct {
	Pull int `json:"pull"`
	Wait int `json:"wait"`
}

// RoundResult is the immutable summary of a finished hot-seat round. It
// exists only between round end and the next round start or reset.
type RoundResult struct {
	HotSeatName    string   `json:"hotSeatName"`
	Choice         Choice   `json:"choice"`
	CorrectPlayers []string `json:"correctPlayers"`
}

// GameState is the serializable snapshot of one room's session. It is owned
// exclusively by its Room and never shared across rooms; every mutation
// happens under the room lock.
type GameState struct {
	Phase    Phase     `json:"phase"`
	Settings Settings  `json:"settings"`
	Players  []*Player `json:"players"`

	// PromptDeck is built once per game start: catalog filtered by vibe,
	// uniformly shuffled. RoundIndex is the 0-based cursor into it.
	PromptDeck    []*prompts.Prompt `json:"filteredQuestions"`
	RoundIndex    int               `json:"questionIndex"`
	CurrentPrompt *prompts.Prompt   `json:"currentQuestion,omitempty"`

	// Hot-seat round fields. Guesses never contains the hot-seat player's
	// own ID and is cleared every round.
	HotSeatPlayerID uuid.UUID            `json:"hotSeatPlayerId"`
	HotSeatChoice   Choice               `json:"hotSeatChoice,omitempty"`
	Guesses         map[uuid.UUID]Choice `json:"guesses"`

	// Standard-mode counters.
	Votes VoteCounts `json:"votes"`

	RoundResult *RoundResult `json:"roundResults,omitempty"`
	TimeLeft    int          `json:"timeLeft"`
}

// NewGameState returns a lobby-phase state with default settings.
func NewGameState() *GameState {
	return &GameState{
		Phase:    PhaseLobby,
		Settings: defaultSettings(),
		Players:  []*Player{},
		Guesses:  make(map[uuid.UUID]Choice),
	}
}

// clone returns a snapshot safe to marshal after the room lock is released.
// Prompts and RoundResult are immutable once published, so sharing those
// pointers is fine; players and guesses are copied.
func (st *GameState) clone() *GameState {
	cp := *st
	cp.Players = make([]*Player, len(st.Players))
	for i, p := range st.Players {
		pv := *p
		cp.Players[i] = &pv
	}
	cp.Guesses = maps.Clone(st.Guesses)
	return &cp
}

// playerByID returns the player with the given connection ID, or nil.
func (st *GameState) playerByID(id uuid.UUID) *Player {
	for _, p := range st.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// eligibleGuessers is the denominator for hot-seat round completion: every
// live player except the hot-seat player. Recomputed from the live roster so
// disconnects shrink it.
func (st *GameState) eligibleGuessers() int {
	n := len(st.Players)
	if st.playerByID(st.HotSeatPlayerID) != nil {
		n--
	}
	if n < 0 {
		n = 0
	}
	return n
}
