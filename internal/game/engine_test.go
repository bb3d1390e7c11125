package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("uppercases and trims", func(t *testing.T) {
		w, err := Normalize("  crane ")
		require.NoError(t, err)
		assert.Equal(t, "CRANE", w)
	})

	t.Run("rejects wrong shapes", func(t *testing.T) {
		for _, in := range []string{"", "cran", "cranes", "cr4ne", "crâne"} {
			_, err := Normalize(in)
			assert.ErrorIs(t, err, ErrInvalidWord, in)
		}
	})
}

func TestScore(t *testing.T) {
	tests := []struct {
		secret, guess string
		want          Pattern
	}{
		{"CRANE", "CRANE", Pattern{MarkHit, MarkHit, MarkHit, MarkHit, MarkHit}},
		{"CRANE", "BOGUS", Pattern{MarkMiss, MarkMiss, MarkMiss, MarkMiss, MarkMiss}},
		{"CRANE", "NACRE", Pattern{MarkPresent, MarkPresent, MarkPresent, MarkPresent, MarkHit}},
		// Only two L's in the secret, so the third guessed L must be a miss.
		{"ALLOT", "LLAMA", Pattern{MarkPresent, MarkHit, MarkPresent, MarkMiss, MarkMiss}},
		// Exact hit consumes the letter before presents are handed out.
		{"ABBEY", "BABES", Pattern{MarkPresent, MarkPresent, MarkHit, MarkHit, MarkMiss}},
		{"SPEED", "EERIE", Pattern{MarkPresent, MarkPresent, MarkMiss, MarkMiss, MarkMiss}},
	}
	for _, tt := range tests {
		t.Run(tt.secret+"/"+tt.guess, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.secret, tt.guess))
		})
	}
}

func TestScoreNeverOvercountsLetters(t *testing.T) {
	words := []string{"ALLOT", "LLAMA", "SPEED", "EERIE", "ABBEY", "BABES", "CRANE", "SASSY", "MAMMA", "LEVEL"}
	for _, secret := range words {
		for _, guess := range words {
			p := Score(secret, guess)
			marked := map[byte]int{}
			for i := range p {
				if p[i] != MarkMiss {
					marked[guess[i]]++
				}
			}
			for letter, n := range marked {
				occurrences := 0
				for i := 0; i < len(secret); i++ {
					if secret[i] == letter {
						occurrences++
					}
				}
				assert.LessOrEqual(t, n, occurrences, "secret=%s guess=%s letter=%c", secret, guess, letter)
			}
		}
	}
}

func TestSolved(t *testing.T) {
	assert.True(t, Solved(Score("CRANE", "CRANE")))
	assert.False(t, Solved(Score("CRANE", "CRATE")))
	assert.False(t, Solved(nil))
}
