// Package prompts holds the static trolley-problem catalog and deck building.
// The catalog is read-only and safe to share across all rooms.
package prompts

import (
	"math/rand"
	"time"
)

// CategoryAll selects the whole catalog when building a deck.
const CategoryAll = "all"

// Option is one of the two labeled choices on a prompt. Impact maps a
// personality trait to how strongly picking this option expresses it; the
// results screen uses it, the server never interprets it.
type Option struct {
	Text   string         `json:"text"`
	Impact map[string]int `json:"impact"`
}

// Prompt is one immutable catalog entry.
type Prompt struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	Category   string `json:"category"` // "philosophy", "party", "dark"
	OptionPull Option `json:"optionPull"`
	OptionWait Option `json:"optionWait"`
}

var catalog = []*Prompt{
	{
		ID:         1,
		Text:       "A trolley is heading towards 5 people tied to the track. You can pull the lever to switch to a track with 1 person.",
		Category:   "philosophy",
		OptionPull: Option{Text: "Pull the Lever", Impact: map[string]int{"utilitarian": 5, "hero": 1, "chaos": 0}},
		OptionWait: Option{Text: "Do Nothing", Impact: map[string]int{"utilitarian": 0, "purist": 5, "chaos": 1}},
	},
	{
		ID:         2,
		Text:       "The trolley is heading towards your Ex-Partner. If you pull the lever, it hits a brand new PS5.",
		Category:   "party",
		OptionPull: Option{Text: "Save the Ex", Impact: map[string]int{"saint": 5, "simp": 5}},
		OptionWait: Option{Text: "Save the PS5", Impact: map[string]int{"capitalist": 3, "petty": 5}},
	},
	{
		ID:         3,
		Text:       "The trolley is heading towards a box containing $1 Million. If you pull the lever, it hits a really cute puppy.",
		Category:   "dark",
		OptionPull: Option{Text: "Hit the Puppy", Impact: map[string]int{"capitalist": 5, "soulless": 5}},
		OptionWait: Option{Text: "Goodbye Money", Impact: map[string]int{"saint": 3, "poor": 5}},
	},
	{
		ID:         4,
		Text:       "Track A has 5 clones of Hitler. Track B has one innocent person who talks during movies.",
		Category:   "party",
		OptionPull: Option{Text: "Hit the Talker", Impact: map[string]int{"chaos": 3, "moviebuff": 5}},
		OptionWait: Option{Text: "Hit the Clones", Impact: map[string]int{"utilitarian": 1, "history": 5}},
	},
	{
		ID:         5,
		Text:       "The trolley is heading towards 3 strangers. Pulling the lever sends it towards your phone with no backups of your photos.",
		Category:   "party",
		OptionPull: Option{Text: "Save the Strangers", Impact: map[string]int{"saint": 4, "hero": 2}},
		OptionWait: Option{Text: "Save the Photos", Impact: map[string]int{"petty": 3, "soulless": 4}},
	},
	{
		ID:         6,
		Text:       "The trolley will hit 1 person today. If you pull the lever, it is delayed a year and hits 5 people you will never hear about.",
		Category:   "philosophy",
		OptionPull: Option{Text: "Delay It", Impact: map[string]int{"chaos": 2, "purist": 1}},
		OptionWait: Option{Text: "Let It Happen", Impact: map[string]int{"utilitarian": 5}},
	},
	{
		ID:         7,
		Text:       "The trolley is heading towards someone who wronged you years ago. Nobody would ever know you were at the lever.",
		Category:   "dark",
		OptionPull: Option{Text: "Save Them", Impact: map[string]int{"saint": 5, "hero": 3}},
		OptionWait: Option{Text: "Look Away", Impact: map[string]int{"petty": 5, "soulless": 3}},
	},
	{
		ID:         8,
		Text:       "Track A has the last copy of every song ever recorded. Track B has a guy who claps when the plane lands.",
		Category:   "party",
		OptionPull: Option{Text: "Hit the Clapper", Impact: map[string]int{"chaos": 4, "moviebuff": 2}},
		OptionWait: Option{Text: "Goodbye Music", Impact: map[string]int{"purist": 3, "history": 4}},
	},
}

// Catalog returns the full prompt list. Callers must not mutate the entries.
func Catalog() []*Prompt {
	return catalog
}

// Deck returns a freshly shuffled copy of the catalog filtered by category.
// CategoryAll (or empty) selects everything.
func Deck(category string) []*Prompt {
	var pool []*Prompt
	for _, p := range catalog {
		if category == CategoryAll || category == "" || p.Category == category {
			pool = append(pool, p)
		}
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}
