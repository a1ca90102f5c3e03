// Package analyzer computes the derived textual properties stored with every
// registered string.
package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// TimestampLayout is the ISO-8601 layout used for created_at (UTC, milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Properties are computed once when a string is registered and never updated.
type Properties struct {
	Length                int            `json:"length" yaml:"length"`
	IsPalindrome          bool           `json:"is_palindrome" yaml:"is_palindrome"`
	UniqueCharacters      int            `json:"unique_characters" yaml:"unique_characters"`
	WordCount             int            `json:"word_count" yaml:"word_count"`
	SHA256Hash            string         `json:"sha256_hash" yaml:"sha256_hash"`
	CharacterFrequencyMap map[string]int `json:"character_frequency_map" yaml:"character_frequency_map"`
	CreatedAt             string         `json:"created_at" yaml:"created_at"`
}

// Analyze computes the properties of value, stamping them with now.
func Analyze(value string, now time.Time) Properties {
	freq := CharacterFrequency(value)
	return Properties{
		Length:                utf8.RuneCountInString(value),
		IsPalindrome:          IsPalindrome(value),
		UniqueCharacters:      len(freq),
		WordCount:             WordCount(value),
		SHA256Hash:            Hash(value),
		CharacterFrequencyMap: freq,
		CreatedAt:             now.UTC().Format(TimestampLayout),
	}
}

// Fold returns the case-folded form of s. Two values are considered the same
// registry key when their folded forms are equal.
func Fold(s string) string {
	// Casers carry state and must not be shared between goroutines.
	return cases.Fold().String(s)
}

// IsPalindrome reports whether s reads the same reversed, ignoring case.
func IsPalindrome(s string) bool {
	runes := []rune(Fold(s))
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if runes[i] != runes[j] {
			return false
		}
	}
	return true
}

// WordCount counts whitespace-delimited tokens. A blank string has no words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Hash returns the lowercase hex SHA-256 digest of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CharacterFrequency maps each character (case-sensitive) to its occurrence count.
func CharacterFrequency(s string) map[string]int {
	freq := make(map[string]int)
	for _, r := range s {
		freq[string(r)]++
	}
	return freq
}
