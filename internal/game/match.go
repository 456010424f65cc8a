// apps/go-server/internal/game/match.go
//
// Guess-text matching for the Guess mode.
// A guess is accepted against a game title if ANY of these pass, tried in
// order, first success wins:
//   1. exact normalized match
//   2. prefix-before-colon match ("Counter-Strike" for
//      "Counter-Strike: Global Offensive")
//   3. acronym match ("csgo"), computed over the whole title, length >= 2
//   4. digit-stripped match ("Portal" for "Portal 2")
//
// No fuzzy/edit-distance matching. Normalization: lowercase, strip
// characters that are not letters, digits, or spaces, collapse whitespace.
// The acronym is built from the raw title split on runs of non-alphanumeric
// characters, so hyphenated words each contribute a letter.

package game

import (
	"strings"
	"unicode"
)

// MatchTitle reports whether guess names the game titled name.
func MatchTitle(guess, name string) bool {
	ng := normalizeTitle(guess)
	nn := normalizeTitle(name)
	if ng == "" || nn == "" {
		return false
	}

	if ng == nn {
		return true
	}

	// Prefix before the first colon, both sides.
	if gp, np := normalizeTitle(colonPrefix(guess)), normalizeTitle(colonPrefix(name)); gp != "" && gp == np {
		return true
	}

	// Acronym of the full title.
	if ac := acronym(name); len(ac) >= 2 && strings.ReplaceAll(ng, " ", "") == ac {
		return true
	}

	// Digit-stripped comparison.
	if sg, sn := stripDigits(ng), stripDigits(nn); sg != "" && sg == sn {
		return true
	}

	return false
}

// normalizeTitle lowercases, removes everything but letters, digits and
// spaces, and collapses whitespace.
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// colonPrefix returns the text before the first colon, trimmed. The whole
// string when there is no colon.
func colonPrefix(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// acronym lowercases and takes the first letter of every word, where words
// are separated by any run of non-alphanumeric characters.
func acronym(s string) string {
	var b strings.Builder
	inWord := false
	for _, r := range strings.ToLower(s) {
		alnum := unicode.IsLetter(r) || unicode.IsDigit(r)
		if alnum && !inWord {
			b.WriteRune(r)
		}
		inWord = alnum
	}
	return b.String()
}

// stripDigits removes all digits and re-collapses whitespace.
func stripDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
