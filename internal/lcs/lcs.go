// Package lcs provides word-based longest-common-subsequence helpers used to
// suggest the closest member name in diagnostics.
package lcs

// Common returns the longest common subsequence of two word slices.
func Common(a, b []string) []string {
	// Classic dynamic programming over word boundaries. Member names are
	// short, so the quadratic table is fine.
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else {
				table[i][j] = max(table[i-1][j], table[i][j-1])
			}
		}
	}

	common := make([]string, 0, table[len(a)][len(b)])
	for i, j := len(a), len(b); i > 0 && j > 0; {
		switch {
		case a[i-1] == b[j-1]:
			common = append(common, a[i-1])
			i--
			j--
		case table[i-1][j] >= table[i][j-1]:
			i--
		default:
			j--
		}
	}

	for i, j := 0, len(common)-1; i < j; i, j = i+1, j-1 {
		common[i], common[j] = common[j], common[i]
	}
	return common
}

// Similarity scores how alike two names are as the ratio of common words to
// the longer name's word count, in [0, 1].
func Similarity(a, b string) float64 {
	wordsA, wordsB := SplitWords(a), SplitWords(b)
	longer := max(len(wordsA), len(wordsB))
	if longer == 0 {
		return 0
	}
	return float64(len(Common(wordsA, wordsB))) / float64(longer)
}

// Closest returns the candidate most similar to name, or "" when no candidate
// shares any word with it. Ties keep the earliest candidate.
func Closest(name string, candidates []string) string {
	best, bestScore := "", 0.0
	for _, cand := range candidates {
		if score := Similarity(name, cand); score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best
}
