// assets/embed.go
//
// Default word lists compiled into the binary, plus the line format shared
// with word list files on disk: one word per line, blank lines and lines
// starting with '#' ignored.

package assets

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"
)

//go:embed allowed.txt answers.txt
var lists embed.FS

// ReadWords returns the words in r, uppercased. It does not validate them.
func ReadWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || s[0] == '#' {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

func embedded(name string) ([]string, error) {
	f, err := lists.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ws, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ws, nil
}

// Answers returns the embedded secret candidates.
func Answers() ([]string, error) { return embedded("answers.txt") }

// Allowed returns the embedded extra guesses.
func Allowed() ([]string, error) { return embedded("allowed.txt") }
