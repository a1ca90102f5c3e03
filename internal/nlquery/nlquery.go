// Package nlquery translates free-text queries into registry filters using a
// fixed, ordered table of keyword rules.
//
// This is a keyword heuristic: each rule is a regular expression matched
// against the lower-cased query, and every matching rule contributes its
// effect. There is no grammar and no attempt at language understanding.
package nlquery

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	regerrors "strreg/internal/errors"
	"strreg/internal/registry"
)

// Interpretation is the result of applying the rule table to a query.
type Interpretation struct {
	Original      string             `json:"original"`
	ParsedFilters registry.Filter    `json:"parsed_filters"`
	Sort          registry.SortOrder `json:"sort,omitempty"`
	MatchedRules  []string           `json:"matched_rules"`
}

// Query converts the interpretation into a registry query.
func (in *Interpretation) Query() registry.Query {
	sort := in.Sort
	if sort == "" {
		sort = registry.SortCreated
	}
	return registry.Query{Filter: in.ParsedFilters, Sort: sort}
}

// rule is one keyword pattern and the effect it has when it matches.
// m holds the submatches of the first match.
type rule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(m []string, in *Interpretation) error
}

// rules are evaluated in this order; later rules overwrite earlier ones that
// set the same field.
var rules = []rule{
	{
		name:    "palindrome",
		pattern: regexp.MustCompile(`palindrom\w*`),
		apply: func(_ []string, in *Interpretation) error {
			in.ParsedFilters.IsPalindrome = registry.BoolPtr(true)
			return nil
		},
	},
	{
		name:    "single_word",
		pattern: regexp.MustCompile(`\b(?:single|one) word\b`),
		apply: func(_ []string, in *Interpretation) error {
			in.ParsedFilters.WordCount = registry.IntPtr(1)
			return nil
		},
	},
	{
		name:    "word_count",
		pattern: regexp.MustCompile(`\b(\d+) words\b`),
		apply: func(m []string, in *Interpretation) error {
			n, err := number(m[1])
			if err != nil {
				return err
			}
			in.ParsedFilters.WordCount = registry.IntPtr(n)
			return nil
		},
	},
	{
		name:    "longer_than",
		pattern: regexp.MustCompile(`\blonger than (\d+)`),
		apply: func(m []string, in *Interpretation) error {
			n, err := number(m[1])
			if err != nil {
				return err
			}
			if n == math.MaxInt {
				return regerrors.Newf(regerrors.InvalidFilter, "no string is longer than %d characters", n)
			}
			in.ParsedFilters.MinLength = registry.IntPtr(n + 1)
			return nil
		},
	},
	{
		name:    "shorter_than",
		pattern: regexp.MustCompile(`\bshorter than (\d+)`),
		apply: func(m []string, in *Interpretation) error {
			n, err := number(m[1])
			if err != nil {
				return err
			}
			if n == 0 {
				return regerrors.New(regerrors.InvalidFilter, "no string is shorter than 0 characters")
			}
			in.ParsedFilters.MaxLength = registry.IntPtr(n - 1)
			return nil
		},
	},
	{
		name:    "exact_length",
		pattern: regexp.MustCompile(`\b(?:exactly )?(\d+) characters? long\b`),
		apply: func(m []string, in *Interpretation) error {
			n, err := number(m[1])
			if err != nil {
				return err
			}
			in.ParsedFilters.Length = registry.IntPtr(n)
			return nil
		},
	},
	{
		name:    "contains_letter",
		pattern: regexp.MustCompile(`\bcontain(?:s|ing)? the (?:letter|character) (\p{L}|\p{N})(?:\s|$|[[:punct:]])`),
		apply: func(m []string, in *Interpretation) error {
			in.ParsedFilters.ContainsCharacter = registry.StringPtr(m[1])
			return nil
		},
	},
	{
		name:    "first_vowel",
		pattern: regexp.MustCompile(`\bfirst vowel\b`),
		apply: func(_ []string, in *Interpretation) error {
			in.ParsedFilters.ContainsCharacter = registry.StringPtr("a")
			return nil
		},
	},
	{
		name:    "sort_longest",
		pattern: regexp.MustCompile(`\b(?:longest|long)\b`),
		apply: func(_ []string, in *Interpretation) error {
			in.Sort = registry.SortLengthDesc
			return nil
		},
	},
	{
		name:    "sort_shortest",
		pattern: regexp.MustCompile(`\b(?:shortest|short)\b`),
		apply: func(_ []string, in *Interpretation) error {
			in.Sort = registry.SortLengthAsc
			return nil
		},
	},
	{
		name:    "sort_unique",
		pattern: regexp.MustCompile(`\bunique\b`),
		apply: func(_ []string, in *Interpretation) error {
			in.Sort = registry.SortUniqueDesc
			return nil
		},
	},
}

// Interpret applies the rule table to query. It fails with UNPARSABLE_QUERY
// when the query is blank or no rule matches, and with INVALID_FILTER when
// the matched rules contradict each other.
func Interpret(query string) (*Interpretation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, regerrors.New(regerrors.UnparsableQuery, "Missing query parameter")
	}

	lower := strings.ToLower(query)
	in := &Interpretation{Original: query, MatchedRules: []string{}}

	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if err := r.apply(m, in); err != nil {
			return nil, err
		}
		in.MatchedRules = append(in.MatchedRules, r.name)
	}

	if len(in.MatchedRules) == 0 {
		return nil, regerrors.New(regerrors.UnparsableQuery, "Unable to parse natural language query").
			WithDetails(map[string]string{"query": query})
	}

	if err := in.ParsedFilters.Validate(); err != nil {
		return nil, regerrors.Wrap(regerrors.InvalidFilter, "Query parsed but resulted in conflicting filters", err)
	}
	return in, nil
}

func number(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, regerrors.Newf(regerrors.InvalidFilter, "number %q is out of range", s)
	}
	return n, nil
}
