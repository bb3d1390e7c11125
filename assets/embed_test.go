package assets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWords(t *testing.T) {
	got, err := ReadWords(strings.NewReader("# header\ncrane\n\n  slate \n#skip\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CRANE", "SLATE"}, got)
}

func TestEmbeddedLists(t *testing.T) {
	answers, err := Answers()
	require.NoError(t, err)
	assert.NotEmpty(t, answers)

	allowed, err := Allowed()
	require.NoError(t, err)
	assert.NotEmpty(t, allowed)
}
