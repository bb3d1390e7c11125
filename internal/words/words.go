// internal/words/words.go
//
// Dictionary gateway for the room engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from configured files or fall back to the embedded assets.
//   - Maintain sets for quick lookups (answers only, answers ∪ guesses).
//   - Supply IsValid (membership test) and Random (secret pick).
//
// Word Lists:
//   - "answers": words the server may pick as a secret (exactly 5 letters).
//   - "allowed": valid guesses (always includes answers).
//
// Loading behavior (Load):
//   1. If both paths are set, load answers from the first and allowed guesses from the second.
//   2. If only the allowed path is set, use that file for both answers and allowed guesses.
//   3. If neither is set, fall back to the embedded lists in package assets.
//
// Constraints:
//   • Words must be 5 alphabetic letters.
//   • Lists are normalized to uppercase.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordle/apps/versus-server/assets"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// ErrEmpty is returned by Load when no answers survive normalisation.
var ErrEmpty = errors.New("words: answers list is empty")

// Dictionary is the contract the room engine consumes.
type Dictionary interface {
	// IsValid reports whether word is an accepted guess or secret.
	IsValid(word string) bool
	// Random returns a random answer word, or "" if none is available.
	Random() string
}

// List is an immutable, read-only Dictionary backed by in-memory sets.
// It is safe for concurrent use once constructed.
type List struct {
	answers    []string
	allowedSet map[string]struct{}
	answersSet map[string]struct{}
}

// Load builds a List following the three cases described above.
func Load(answersPath, allowedPath string) (*List, error) {
	var ansList, allowList []string
	var err error

	switch {
	case answersPath != "" && allowedPath != "":
		if ansList, err = readWordFile(answersPath); err != nil {
			return nil, fmt.Errorf("read answers: %w", err)
		}
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, fmt.Errorf("read allowed: %w", err)
		}

	case answersPath == "" && allowedPath != "":
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, fmt.Errorf("read allowed: %w", err)
		}
		ansList = allowList

	default:
		if ansList, err = assets.Answers(); err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		if allowList, err = assets.Allowed(); err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
	}

	return New(ansList, allowList)
}

// New builds a List from explicit slices. Answers are always added to the
// allowed set.
func New(answers, allowed []string) (*List, error) {
	answers = normalize(answers)
	if len(answers) == 0 {
		return nil, ErrEmpty
	}
	l := &List{
		answers:    answers,
		answersSet: toSet(answers),
		allowedSet: toSet(answers),
	}
	for _, w := range normalize(allowed) {
		l.allowedSet[w] = struct{}{}
	}
	return l, nil
}

// readWordFile loads a word list file in the same format as the embedded
// lists. Validation happens in New.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadWords(f)
}

// normalize uppercases, validates and de-duplicates a word slice.
func normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, line := range in {
		w, err := game.Normalize(line)
		if err != nil {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// Random returns a cryptographically random answer.
func (l *List) Random() string {
	if len(l.answers) == 0 {
		return ""
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	if err != nil {
		return ""
	}
	return l.answers[nBig.Int64()]
}

// IsValid reports whether w is a valid guess (answers ∪ guesses).
func (l *List) IsValid(w string) bool {
	_, ok := l.allowedSet[strings.ToUpper(strings.TrimSpace(w))]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answersSet[strings.ToUpper(strings.TrimSpace(w))]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
