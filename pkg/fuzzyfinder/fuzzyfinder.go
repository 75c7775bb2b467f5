package fuzzyfinder

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type Rank struct {
	// Source is the query that was matched.
	Source string

	// Target is the candidate name matched against.
	Target string

	// Distance is the Levenshtein distance between Source and Target.
	Distance int

	// OriginalIndex is the position of Target in the candidate list.
	OriginalIndex int
}

// Matches reports whether every rune of query appears in name, in order,
// ignoring case and diacritics.
func Matches(query, name string) bool {
	return fuzzy.MatchNormalizedFold(query, name)
}

// RankFind returns the names matching query, closest first. Ties keep the
// order of names.
func RankFind(names []string, query string) []Rank {
	found := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(found)
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
