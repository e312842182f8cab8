// Package fuzzyfinder resolves what a user typed to one of a list of names.
package fuzzyfinder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	ErrNoMatch   = errors.New("no match")
	ErrAmbiguous = errors.New("ambiguous match")
)

type Rank struct {
	// Source is the query that was matched.
	Source string

	// Target is the name matched against.
	Target string

	// Distance is the Levenshtein distance between Source and Target.
	Distance int

	// Location of Target in original list
	OriginalIndex int
}

// RankFind returns every name the query fuzzily matches, case-insensitively,
// closest first.
func RankFind(names []string, query string) []Rank {
	found := fuzzy.RankFindFold(query, names)
	sort.Sort(found)
	ranks := make([]Rank, found.Len())
	for i, r := range found {
		ranks[i] = Rank{
			Source:        r.Source,
			Target:        r.Target,
			Distance:      r.Distance,
			OriginalIndex: r.OriginalIndex,
		}
	}
	return ranks
}

// Resolve returns the index of the one name query refers to. An exact match,
// ignoring case, wins; otherwise the single closest fuzzy match does.
func Resolve(names []string, query string) (int, error) {
	exact := -1
	for i, name := range names {
		if strings.EqualFold(name, query) {
			if exact >= 0 {
				return -1, fmt.Errorf("%q: %w: %q and %q", query, ErrAmbiguous, names[exact], name)
			}
			exact = i
		}
	}
	if exact >= 0 {
		return exact, nil
	}

	ranks := RankFind(names, query)
	switch {
	case len(ranks) == 0:
		return -1, fmt.Errorf("%q: %w", query, ErrNoMatch)
	case len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance:
		return -1, fmt.Errorf("%q: %w: %q and %q", query, ErrAmbiguous, ranks[0].Target, ranks[1].Target)
	}
	return ranks[0].OriginalIndex, nil
}
