// ABOUTME: Normalization of spoken transcripts for challenge comparison.
// ABOUTME: Maps digits and common homophones to canonical number words.

package challenge

import "strings"

// equivalences maps recognized spoken variants to their canonical token.
// Digits cover the transcription "say four" -> "4" case; the word entries
// cover common speech-to-text homophones. Unrecognized tokens pass through
// unchanged.
var equivalences = map[string]string{
	"0":  "zero",
	"1":  "one",
	"2":  "two",
	"3":  "three",
	"4":  "four",
	"5":  "five",
	"6":  "six",
	"7":  "seven",
	"8":  "eight",
	"9":  "nine",
	"10": "ten",

	"oh":   "zero",
	"won":  "one",
	"to":   "two",
	"too":  "two",
	"tree": "three",
	"for":  "four",
	"fore": "four",
	"sics": "six",
	"ate":  "eight",
}

// Normalize canonicalizes a spoken transcript into a comparable token
// sequence. It lower-cases, trims surrounding punctuation from each token,
// and applies the equivalence table. The function is pure: equal inputs
// always produce equal outputs and no state is touched.
func Normalize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"")
		if f == "" {
			continue
		}
		if canonical, ok := equivalences[f]; ok {
			f = canonical
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Canonical returns the normalized token sequence joined by single spaces.
// Two transcripts match for validation purposes exactly when their
// Canonical forms are equal.
func Canonical(text string) string {
	return strings.Join(Normalize(text), " ")
}
