// Package levenshtein computes edit distances and closest-match suggestions
// for user-supplied identifiers.
package levenshtein

import "strings"

// Distance returns the number of single-rune insertions, deletions or
// substitutions needed to turn a into b. It keeps one row of the DP table.
func Distance(a, b string) int {
	src := []rune(a)
	dst := []rune(b)

	if len(src) < len(dst) {
		src, dst = dst, src
	}

	if len(dst) == 0 {
		return len(src)
	}

	row := make([]int, len(dst)+1)
	for idx := range row {
		row[idx] = idx
	}

	for i, srcRune := range src {
		diag := row[0]
		row[0] = i + 1

		for j, dstRune := range dst {
			above := row[j+1]

			cost := 1
			if srcRune == dstRune {
				cost = 0
			}

			row[j+1] = min(above+1, row[j]+1, diag+cost)
			diag = above
		}
	}

	return row[len(dst)]
}

// Suggest returns the candidate closest to word, comparing case-insensitively,
// when its distance is at most maxDistance. Ties keep the earlier candidate.
func Suggest(word string, candidates []string, maxDistance int) (string, bool) {
	needle := strings.ToLower(word)
	best, bestDistance := "", maxDistance+1

	for _, candidate := range candidates {
		if d := Distance(needle, strings.ToLower(candidate)); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}

	return best, best != ""
}
