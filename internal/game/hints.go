// apps/go-server/internal/game/hints.go
//
// Hint ladder generation for the Guess mode.
// Two ladders, chosen once per round when the game is drawn:
//   - enhanced (storefront details resolved):
//       review score → release year → developer → genre → first letter
//   - basic (aggregate stats only):
//       review score → player count → developer → first letter → second letter
//
// The review-score hint is always present and pre-revealed at rank 0. All
// other hints start unrevealed and are revealed strictly in ascending rank,
// one per wrong guess.

package game

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

// HintKind tags the category of a hint.
type HintKind string

const (
	HintReviewScore  HintKind = "reviewScore"
	HintPlayerCount  HintKind = "playerCount"
	HintDeveloper    HintKind = "developer"
	HintReleaseYear  HintKind = "releaseDate"
	HintGenre        HintKind = "genre"
	HintFirstLetter  HintKind = "firstLetter"
	HintSecondLetter HintKind = "secondLetter"
)

// Hint sources tag which ladder produced the hint.
const (
	HintSourceBasic    = "steamspy"
	HintSourceEnhanced = "steamstore"
)

// Hint is one revealable clue about the current game.
type Hint struct {
	Kind     HintKind `json:"type"`
	Text     string   `json:"text"`
	Source   string   `json:"source"`
	Revealed bool     `json:"revealed"`
	Order    int      `json:"order"`
}

// BasicHints builds the coarse-stats ladder for a game.
func BasicHints(g steam.Game) []Hint {
	hints := []Hint{{
		Kind:     HintReviewScore,
		Text:     fmt.Sprintf("This game has a Steam review score of %d%%", g.Score),
		Source:   HintSourceBasic,
		Revealed: true,
		Order:    0,
	}, {
		Kind:   HintPlayerCount,
		Text:   fmt.Sprintf("This game had an average of %s players in the last 2 weeks", groupDigits(g.AvgPlayers2W)),
		Source: HintSourceBasic,
		Order:  1,
	}}
	if g.Developer != "" {
		hints = append(hints, Hint{
			Kind:   HintDeveloper,
			Text:   fmt.Sprintf("This game was developed by %s", g.Developer),
			Source: HintSourceBasic,
			Order:  2,
		})
	}
	hints = append(hints, Hint{
		Kind:   HintFirstLetter,
		Text:   fmt.Sprintf("The game's name starts with '%c'", firstRune(g.Name)),
		Source: HintSourceBasic,
		Order:  3,
	})
	if runes := []rune(g.Name); len(runes) > 1 {
		hints = append(hints, Hint{
			Kind:   HintSecondLetter,
			Text:   fmt.Sprintf("The second letter in the game's name is '%c'", runes[1]),
			Source: HintSourceBasic,
			Order:  4,
		})
	}
	return hints
}

// EnhancedHints builds the storefront-metadata ladder for a game.
func EnhancedHints(g steam.Game, d *steam.StoreDetails) []Hint {
	hints := []Hint{{
		Kind:     HintReviewScore,
		Text:     fmt.Sprintf("This game has a Steam review score of %d%%", g.Score),
		Source:   HintSourceEnhanced,
		Revealed: true,
		Order:    0,
	}}
	if year := releaseYear(d.ReleaseDate.Date); year != 0 {
		hints = append(hints, Hint{
			Kind:   HintReleaseYear,
			Text:   fmt.Sprintf("This game was released in %d", year),
			Source: HintSourceEnhanced,
			Order:  1,
		})
	}
	if g.Developer != "" {
		hints = append(hints, Hint{
			Kind:   HintDeveloper,
			Text:   fmt.Sprintf("This game was developed by %s", g.Developer),
			Source: HintSourceEnhanced,
			Order:  2,
		})
	}
	if len(d.Genres) > 0 {
		hints = append(hints, Hint{
			Kind:   HintGenre,
			Text:   fmt.Sprintf("This is a %s game", d.Genres[0].Description),
			Source: HintSourceEnhanced,
			Order:  3,
		})
	}
	hints = append(hints, Hint{
		Kind:   HintFirstLetter,
		Text:   fmt.Sprintf("The game's name starts with '%c'", firstRune(g.Name)),
		Source: HintSourceEnhanced,
		Order:  4,
	})
	return hints
}

// RevealNext flips the lowest-ranked unrevealed hint and returns its index,
// or -1 when every hint is already revealed. Ladders are built in rank
// order, so a linear scan suffices.
func RevealNext(hints []Hint) int {
	for i := range hints {
		if !hints[i].Revealed {
			hints[i].Revealed = true
			return i
		}
	}
	return -1
}

// releaseYear pulls a 4-digit year out of a storefront date string, which
// arrives in locale-shaped forms like "21 Aug, 2012". Returns 0 if no year
// is present.
func releaseYear(date string) int {
	digits := 0
	for i, r := range date {
		if unicode.IsDigit(r) {
			digits++
			if digits == 4 {
				var year int
				fmt.Sscanf(date[i-3:], "%4d", &year)
				return year
			}
		} else {
			digits = 0
		}
	}
	return 0
}

// firstRune returns the first rune of s, or '?' for an empty string.
func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return '?'
}

// groupDigits renders n with comma thousands separators.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
