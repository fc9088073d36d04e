package match

import (
	"strings"
)

// NormalizeFunc canonicalizes a raw name before comparison.
type NormalizeFunc func(string) string

// Score computes a [0,1] similarity between two raw names under the given
// normalizer.
//
// Exact match after normalization scores 1.0. If one normalized form contains
// the other ("Sandoz" vs "Sandoz Group"), the score is 0.9 scaled by the
// length ratio plus 0.1, so near-complete containment stays above the usual
// resolution threshold. Otherwise a character-level LCS ratio over the
// normalized forms is returned.
//
// Score(a, a, f) == 1.0 for any a. Symmetry holds for the exact and
// containment branches but is not guaranteed by the ratio branch; callers
// must not rely on it.
func Score(rawA, rawB string, normalize NormalizeFunc) float64 {
	normA := normalize(rawA)
	normB := normalize(rawB)

	if normA == normB {
		return 1.0
	}
	if normA == "" || normB == "" {
		return 0.0
	}

	if strings.Contains(normA, normB) || strings.Contains(normB, normA) {
		shorter, longer := len(normA), len(normB)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return 0.9*(float64(shorter)/float64(longer)) + 0.1
	}

	return lcsRatio(normA, normB)
}

// lcsRatio returns 2*LCS(a,b) / (len(a)+len(b)), the classic similarity ratio
// over the longest common subsequence.
func lcsRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}
