// Package censor filters comment text against a list of forbidden words.
package censor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Word is a banned pattern. Exceptions list whole matches that are allowed
// even though the pattern matches them, e.g. "scampi" for "scam".
type Word struct {
	Text       string   `json:"text"`
	Pattern    string   `json:"pattern"`
	Exceptions []string `json:"exceptions"`

	re *regexp.Regexp
}

func (w Word) matches(token string) bool {
	m := w.re.FindString(token)
	return m != "" && !slices.Contains(w.Exceptions, m)
}

type Censor struct {
	words []Word
}

func New() *Censor {
	return &Censor{}
}

// LoadFromJSON replaces the word list with the one stored at path.
// Nothing changes if any pattern fails to compile.
func (c *Censor) LoadFromJSON(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var words []Word
	if err := json.NewDecoder(f).Decode(&words); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	for i := range words {
		if words[i].re, err = regexp.Compile(words[i].Pattern); err != nil {
			return fmt.Errorf("failed to compile pattern %q: %w", words[i].Pattern, err)
		}
	}

	c.words = words
	return nil
}

// Common digit and symbol substitutions for letters.
var lookalikes = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"@", "a",
	"$", "s",
)

func normalize(text string) []string {
	text = lookalikes.Replace(strings.ToLower(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// Check reports whether any token of text hits a banned pattern. Case and
// common letter substitutions are ignored.
func (c *Censor) Check(text string) bool {
	for _, token := range normalize(text) {
		if slices.ContainsFunc(c.words, func(w Word) bool { return w.matches(token) }) {
			return true
		}
	}
	return false
}

// Banned makes Censor usable wherever a remote Client is.
func (c *Censor) Banned(_ context.Context, text string) (bool, error) {
	return c.Check(text), nil
}
