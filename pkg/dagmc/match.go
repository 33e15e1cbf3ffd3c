package dagmc

import (
	"sort"
	"strings"
)

// closeMatches returns up to n candidates scoring at least 0.6
// against target, best first. Ties keep the candidates' order.
func closeMatches(target string, candidates []string, n int) []string {
	type scored struct {
		name  string
		score float64
	}
	var ranked []scored
	for _, c := range candidates {
		if s := similarity(strings.ToLower(target), strings.ToLower(c)); s >= 0.6 {
			ranked = append(ranked, scored{c, s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}
	return out
}

// similarity computes the Ratcliff-Obershelp ratio between a and b:
// twice the total length of recursively matched common substrings
// over the combined length. 1 means equal, 0 means nothing shared.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	return 2 * float64(commonChars(ra, rb)) / float64(len(ra)+len(rb))
}

func commonChars(a, b []rune) int {
	ia, ib, size := longestCommon(a, b)
	if size == 0 {
		return 0
	}
	return size +
		commonChars(a[:ia], b[:ib]) +
		commonChars(a[ia+size:], b[ib+size:])
}

// longestCommon finds the longest common substring of a and b,
// returning its start in each and its length. Earliest in a wins
// ties.
func longestCommon(a, b []rune) (int, int, int) {
	bestA, bestB, best := 0, 0, 0
	for i := range a {
		for j := range b {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > best {
				bestA, bestB, best = i, j, k
			}
		}
	}
	return bestA, bestB, best
}
