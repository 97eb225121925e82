// internal/prompts/prompts_test.go
package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckFiltersByCategory(t *testing.T) {
	deck := Deck("party")
	require.NotEmpty(t, deck)
	for _, p := range deck {
		assert.Equal(t, "party", p.Category)
	}
}

func TestDeckAllIncludesEverything(t *testing.T) {
	assert.Len(t, Deck(CategoryAll), len(Catalog()))
	assert.Len(t, Deck(""), len(Catalog()))
}

func TestDeckUnknownCategoryIsEmpty(t *testing.T) {
	assert.Empty(t, Deck("wholesome"))
}

func TestDeckShuffleLeavesCatalogIntact(t *testing.T) {
	before := make([]int, 0, len(Catalog()))
	for _, p := range Catalog() {
		before = append(before, p.ID)
	}

	for i := 0; i < 10; i++ {
		Deck(CategoryAll)
	}

	for i, p := range Catalog() {
		assert.Equal(t, before[i], p.ID)
	}
}

func TestCatalogEntriesAreComplete(t *testing.T) {
	seen := make(map[int]bool)
	for _, p := range Catalog() {
		assert.False(t, seen[p.ID], "duplicate prompt id %d", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Text)
		assert.NotEmpty(t, p.Category)
		assert.NotEmpty(t, p.OptionPull.Text)
		assert.NotEmpty(t, p.OptionWait.Text)
	}
}
