package registry

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	regerrors "strreg/internal/errors"
)

// Filter narrows a listing. Nil fields are not applied; the others are ANDed.
// The JSON form is the filters_applied echo.
type Filter struct {
	Length            *int    `json:"length,omitempty"`
	MinLength         *int    `json:"min_length,omitempty"`
	MaxLength         *int    `json:"max_length,omitempty"`
	IsPalindrome      *bool   `json:"is_palindrome,omitempty"`
	WordCount         *int    `json:"word_count,omitempty"`
	UniqueCharacters  *int    `json:"unique_characters,omitempty"`
	ContainsCharacter *string `json:"contains_character,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Validate rejects filters that can never match.
func (f Filter) Validate() error {
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		return regerrors.Newf(regerrors.InvalidFilter,
			"min_length (%d) cannot be greater than max_length (%d)", *f.MinLength, *f.MaxLength)
	}
	if f.ContainsCharacter != nil && utf8.RuneCountInString(*f.ContainsCharacter) != 1 {
		return regerrors.New(regerrors.InvalidFilter, "contains_character must be a single character")
	}
	return nil
}

// Matches reports whether rec satisfies every set filter.
func (f Filter) Matches(rec *Record) bool {
	p := rec.Properties
	switch {
	case f.Length != nil && p.Length != *f.Length:
		return false
	case f.MinLength != nil && p.Length < *f.MinLength:
		return false
	case f.MaxLength != nil && p.Length > *f.MaxLength:
		return false
	case f.IsPalindrome != nil && p.IsPalindrome != *f.IsPalindrome:
		return false
	case f.WordCount != nil && p.WordCount != *f.WordCount:
		return false
	case f.UniqueCharacters != nil && p.UniqueCharacters != *f.UniqueCharacters:
		return false
	case f.ContainsCharacter != nil && !strings.Contains(rec.Value, *f.ContainsCharacter):
		return false
	}
	return true
}

// SortOrder orders a listing.
type SortOrder string

const (
	// SortCreated keeps insertion order
	SortCreated SortOrder = "created_asc"
	// SortLengthDesc puts the longest strings first
	SortLengthDesc SortOrder = "length_desc"
	// SortLengthAsc puts the shortest strings first
	SortLengthAsc SortOrder = "length_asc"
	// SortUniqueDesc puts strings with the most distinct characters first
	SortUniqueDesc SortOrder = "unique_desc"
)

// ParseSortOrder validates a sort parameter; empty means insertion order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", SortCreated:
		return SortCreated, nil
	case SortLengthDesc, SortLengthAsc, SortUniqueDesc:
		return SortOrder(s), nil
	}
	return "", regerrors.Newf(regerrors.InvalidFilter,
		"sort must be one of %s, %s, %s, %s", SortCreated, SortLengthDesc, SortLengthAsc, SortUniqueDesc)
}

// Apply sorts records in place. Ties keep insertion order.
func (o SortOrder) Apply(records []*Record) {
	var cmp func(a, b *Record) int
	switch o {
	case SortLengthDesc:
		cmp = func(a, b *Record) int { return b.Properties.Length - a.Properties.Length }
	case SortLengthAsc:
		cmp = func(a, b *Record) int { return a.Properties.Length - b.Properties.Length }
	case SortUniqueDesc:
		cmp = func(a, b *Record) int { return b.Properties.UniqueCharacters - a.Properties.UniqueCharacters }
	default:
		return
	}
	slices.SortStableFunc(records, cmp)
}

// Query is a filter plus an ordering.
type Query struct {
	Filter Filter
	Sort   SortOrder
}

// ParseQuery builds a Query from URL query parameters. Each malformed
// parameter is reported as INVALID_FILTER.
func ParseQuery(values url.Values) (Query, error) {
	var q Query
	var err error

	intParams := []struct {
		name string
		dst  **int
	}{
		{"length", &q.Filter.Length},
		{"min_length", &q.Filter.MinLength},
		{"max_length", &q.Filter.MaxLength},
		{"word_count", &q.Filter.WordCount},
		{"unique_characters", &q.Filter.UniqueCharacters},
	}
	for _, p := range intParams {
		if !values.Has(p.name) {
			continue
		}
		if *p.dst, err = parseNonNegative(p.name, values.Get(p.name)); err != nil {
			return Query{}, err
		}
	}

	if values.Has("is_palindrome") {
		var b bool
		switch values.Get("is_palindrome") {
		case "true":
			b = true
		case "false":
		default:
			return Query{}, regerrors.New(regerrors.InvalidFilter, "is_palindrome must be true or false")
		}
		q.Filter.IsPalindrome = &b
	}

	if values.Has("contains_character") {
		c := values.Get("contains_character")
		q.Filter.ContainsCharacter = &c
	}

	if q.Sort, err = ParseSortOrder(values.Get("sort")); err != nil {
		return Query{}, err
	}

	if err := q.Filter.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func parseNonNegative(name, raw string) (*int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, regerrors.Newf(regerrors.InvalidFilter, "%s must be an integer", name)
	}
	if n < 0 {
		return nil, regerrors.Newf(regerrors.InvalidFilter, "%s must not be negative", name)
	}
	return &n, nil
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
