// internal/game/types.go
//
// Core type definitions for the scoring engine.
// Defines:
//   - Mark: per-letter result of a guess (hit/present/miss).
//   - Pattern: the ordered marks produced by scoring one guess.

package game

// WordLength is the fixed number of letters in every secret and guess.
const WordLength = 5

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "hit":     letter is correct and in the correct position.
//   - "present": letter exists in the secret but in a different position.
//   - "miss":    letter does not exist in the (remaining) secret at all.
type Mark string

const (
	MarkHit     Mark = "hit"
	MarkPresent Mark = "present"
	MarkMiss    Mark = "miss"
)

// Pattern is the scored result of one guess. It is produced once and
// never mutated afterwards.
type Pattern []Mark

// Guess pairs a submitted word with its pattern.
type Guess struct {
	Word    string  `json:"guess"`
	Pattern Pattern `json:"pattern"`
}
