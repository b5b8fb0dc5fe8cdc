// ABOUTME: Random phrase generation for voice challenges.
// ABOUTME: Draws one word and one number word from configurable pools.

package challenge

import "math/rand"

// DefaultWords is the default word pool for phrase generation.
var DefaultWords = []string{
	"apple", "banana", "dolphin", "elephant", "flower",
	"garden", "island", "jungle", "kitchen", "lemon",
	"mountain", "ocean", "piano", "rainbow", "sunset",
	"thunder", "umbrella", "village", "window", "zebra",
}

// DefaultNumbers is the default number-word pool for phrase generation.
var DefaultNumbers = []string{
	"one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "zero",
}

// PhraseGenerator produces spoken challenge phrases like "ocean four".
// Phrases are drawn uniformly from the word and number pools; there is no
// uniqueness guarantee across calls since challenges are scoped per tenant.
type PhraseGenerator struct {
	words   []string
	numbers []string
}

// NewPhraseGenerator creates a generator with the given pools.
// Empty pools fall back to the defaults.
func NewPhraseGenerator(words, numbers []string) *PhraseGenerator {
	if len(words) == 0 {
		words = DefaultWords
	}
	if len(numbers) == 0 {
		numbers = DefaultNumbers
	}
	return &PhraseGenerator{words: words, numbers: numbers}
}

// Generate returns a new challenge phrase: one word and one number word
// joined by a single space.
func (g *PhraseGenerator) Generate() string {
	word := g.words[rand.Intn(len(g.words))]
	number := g.numbers[rand.Intn(len(g.numbers))]
	return word + " " + number
}

// Pools returns the word and number pools in use.
func (g *PhraseGenerator) Pools() (words, numbers []string) {
	return g.words, g.numbers
}
