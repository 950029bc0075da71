package retrieval

const defaultMaxDistance = 2

// FuzzyPair records one typo-tolerant match between a query keyword and a
// token found in a chunk, kept for result metadata.
type FuzzyPair struct {
	Keyword string `json:"keyword"`
	Matched string `json:"matched"`
}

// editDistance computes the optimal string alignment distance between two
// words: insertions, deletions, substitutions, and adjacent transpositions
// all cost one. Counting a transposition as a single edit matters because
// swapped letters are the most common typo ("spaer" for "spear").
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	rows := make([][]int, n+1)
	for i := range rows {
		rows[i] = make([]int, m+1)
		rows[i][0] = i
	}
	for j := 0; j <= m; j++ {
		rows[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min3(
				rows[i-1][j]+1,
				rows[i][j-1]+1,
				rows[i-1][j-1]+cost,
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := rows[i-2][j-2] + 1; t < d {
					d = t
				}
			}
			rows[i][j] = d
		}
	}
	return rows[n][m]
}

// IsSimilarWord reports whether two folded words are within typo distance
// of each other. The allowed distance scales with word length: short words
// (six characters or less) tolerate a single edit, longer words tolerate
// maxDistance (default 2). Short words need the tighter bound because at
// distance two almost any pair of them would match.
func IsSimilarWord(a, b string, maxDistance int) bool {
	if a == b {
		return true
	}
	if maxDistance <= 0 {
		maxDistance = defaultMaxDistance
	}
	allowed := maxDistance
	if len(a) <= 6 || len(b) <= 6 {
		allowed = 1
	}
	if diff := len(a) - len(b); diff > allowed || -diff > allowed {
		return false
	}
	return editDistance(a, b) <= allowed
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
