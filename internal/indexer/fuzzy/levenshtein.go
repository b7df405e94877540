// Package fuzzy measures how far apart two terms are and decides whether a
// term is close enough to a query term to count as a typo of it.
package fuzzy

// MaxEditDistance caps the tolerated distance regardless of term length.
const MaxEditDistance = 2

// Distance returns the Levenshtein distance between a and b with unit cost
// for insertion, deletion and substitution. Runes, not bytes, are compared.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		dp[i][0] = i
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			dp[i][j] = min(
				dp[i-1][j]+1,
				dp[i][j-1]+1,
				dp[i-1][j-1]+cost,
			)
		}
	}
	return dp[m][n]
}

// MaxDistance is the tolerance for a query term: one edit per three
// characters, at most MaxEditDistance.
func MaxDistance(term string) int {
	return min(MaxEditDistance, len([]rune(term))/3)
}

// Within reports whether candidate is within the tolerance of query.
func Within(query, candidate string) bool {
	return Distance(query, candidate) <= MaxDistance(query)
}
