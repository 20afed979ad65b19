package align

import (
	"math"
	"sort"
)

// Match pairs a query descriptor with its nearest train descriptor.
type Match struct {
	Query    int
	Train    int
	Distance int
}

// MatchHamming finds, for every query descriptor, the train descriptor with
// the smallest Hamming distance. The first minimum wins ties.
func MatchHamming(query, train []Descriptor) []Match {
	if len(train) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(query))
	for qi := range query {
		best, bestDist := -1, math.MaxInt
		for ti := range train {
			if d := Hamming(&query[qi], &train[ti]); d < bestDist {
				best, bestDist = ti, d
			}
		}
		matches = append(matches, Match{Query: qi, Train: best, Distance: bestDist})
	}
	return matches
}

// BestMatches sorts matches by ascending distance (stable) and keeps the
// leading fraction, truncated toward zero.
func BestMatches(matches []Match, fraction float64) []Match {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })
	keep := int(float64(len(sorted)) * fraction)
	return sorted[:keep]
}
