// ABOUTME: Tests for spoken-transcript normalization.
// ABOUTME: Covers digits, homophones, casing, punctuation, and pass-through.

package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"digit to word", "ocean 4", []string{"ocean", "four"}},
		{"homophone for", "ocean for", []string{"ocean", "four"}},
		{"homophone to", "garden to", []string{"garden", "two"}},
		{"homophone too", "garden too", []string{"garden", "two"}},
		{"homophone won", "sunset won", []string{"sunset", "one"}},
		{"homophone ate", "piano ate", []string{"piano", "eight"}},
		{"uppercase", "Ocean Four", []string{"ocean", "four"}},
		{"mixed case homophone", "Ocean For", []string{"ocean", "four"}},
		{"punctuation", "ocean four!", []string{"ocean", "four"}},
		{"extra whitespace", "  ocean   four  ", []string{"ocean", "four"}},
		{"ten as digits", "rainbow 10", []string{"rainbow", "ten"}},
		{"unrecognized pass through", "flibber gibbet", []string{"flibber", "gibbet"}},
		{"empty", "", []string{}},
		{"only punctuation", "...", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestCanonical_EquivalenceClasses(t *testing.T) {
	// All spoken variants of "four" compare equal.
	assert.Equal(t, Canonical("four"), Canonical("4"))
	assert.Equal(t, Canonical("four"), Canonical("For"))
	assert.Equal(t, Canonical("four"), Canonical("fore"))

	// But distinct numbers never collapse together.
	assert.NotEqual(t, Canonical("four"), Canonical("five"))
	assert.NotEqual(t, Canonical("four"), Canonical("4 4"))
}

func TestCanonical_OrderMatters(t *testing.T) {
	assert.NotEqual(t, Canonical("ocean four"), Canonical("four ocean"))
}

func TestNormalize_Pure(t *testing.T) {
	// Same input twice gives the same output; nothing is memoized or mutated.
	first := Normalize("ocean 4 for to")
	second := Normalize("ocean 4 for to")
	assert.Equal(t, first, second)
}
