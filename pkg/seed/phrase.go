// Package seed reads and validates the recovery phrase used to import a wallet.
package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// PhraseLength is the number of words the import form accepts.
const PhraseLength = 12

var (
	// ErrWordCount is returned when a phrase does not have exactly PhraseLength words.
	ErrWordCount = errors.New("recovery phrase must contain exactly 12 words")

	// ErrEmptyWord is returned when a word slice contains a blank entry.
	ErrEmptyWord = errors.New("recovery phrase contains an empty word")
)

// Phrase is a validated recovery phrase. The zero value is not valid; build one
// with Parse, ReadFile or New.
type Phrase struct {
	words []string
}

// New validates words and returns a Phrase holding a copy of them.
func New(words []string) (Phrase, error) {
	if err := Validate(words); err != nil {
		return Phrase{}, err
	}
	return Phrase{words: append([]string(nil), words...)}, nil
}

// Parse splits text on any whitespace and validates the result.
func Parse(text string) (Phrase, error) {
	return New(strings.Fields(text))
}

// ReadFile reads a phrase from a text file.
func ReadFile(path string) (Phrase, error) {
	if path == "" {
		return Phrase{}, fmt.Errorf("seed file path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Phrase{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	phrase, err := Parse(string(data))
	if err != nil {
		return Phrase{}, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return phrase, nil
}

// Validate checks the word count and that no word is blank.
func Validate(words []string) error {
	if len(words) != PhraseLength {
		return fmt.Errorf("%w: got %d", ErrWordCount, len(words))
	}
	for i, w := range words {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyWord, i)
		}
	}
	return nil
}

// Words returns a copy of the words in order.
func (p Phrase) Words() []string {
	return append([]string(nil), p.words...)
}

// Len returns the number of words.
func (p Phrase) Len() int {
	return len(p.words)
}

// String never prints the words.
func (p Phrase) String() string {
	return fmt.Sprintf("seed.Phrase(%d words)", len(p.words))
}
