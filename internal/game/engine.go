// internal/game/engine.go
//
// Scoring engine shared by every room mode.
// Responsibilities:
//   - Normalise and validate candidate words (5 ASCII letters, uppercase).
//   - Score guesses using the classic two-pass algorithm.
//
// Everything here is pure: no state, no I/O, safe for concurrent use.
package game

import (
	"errors"
	"strings"
)

// ErrInvalidWord is returned by Normalize for anything that is not
// exactly WordLength letters.
var ErrInvalidWord = errors.New("word must be 5 letters")

// Normalize trims and uppercases w and checks its shape.
func Normalize(w string) (string, error) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) != WordLength || !isAlpha(w) {
		return "", ErrInvalidWord
	}
	return w, nil
}

// Score implements the standard two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Hit.
//   - Count remaining (non-hit) secret letters.
//
// Pass 2:
//   - For each non-hit guess letter: if there is remaining count for that letter,
//     mark Present and decrement the count; otherwise mark Miss.
//
// Both arguments must already be normalised to the same length.
func Score(secret, guess string) Pattern {
	n := len(guess)
	res := make(Pattern, n)

	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == secret[i] {
			res[i] = MarkHit
		} else {
			counts[idx(secret[i])]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkHit {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkMiss
		}
	}
	return res
}

// Solved reports true if every mark is a hit.
func Solved(p Pattern) bool {
	if len(p) == 0 {
		return false
	}
	for _, m := range p {
		if m != MarkHit {
			return false
		}
	}
	return true
}

// idx maps an uppercase ASCII letter to 0..25.
func idx(b byte) int { return int(b) - 'A' }

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
