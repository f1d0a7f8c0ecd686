// Package similarity implements the normalized string-edit similarity
// ratio used for fuzzy catalog suggestions: matching characters times two
// over the combined length, after a longest-common-block alignment.
package similarity

// Ratio returns a similarity score in [0,1] for a and b. Identical
// strings score 1.0; strings with no common characters score 0.0. Two
// empty strings are considered identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchTotal(ra, rb, 0, len(ra), 0, len(rb), positions(rb))
	return 2.0 * float64(matched) / float64(total)
}

// positions maps each rune in b to its occurrence indexes, ascending.
func positions(b []rune) map[rune][]int {
	p := make(map[rune][]int, len(b))
	for j, r := range b {
		p[r] = append(p[r], j)
	}
	return p
}

// matchTotal sums the lengths of all matching blocks between a[alo:ahi]
// and b[blo:bhi]: find the longest common block, then recurse on the
// regions to its left and right.
func matchTotal(a, b []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) int {
	i, j, size := longestMatch(a, alo, ahi, blo, bhi, b2j)
	if size == 0 {
		return 0
	}
	return size +
		matchTotal(a, b, alo, i, blo, j, b2j) +
		matchTotal(a, b, i+size, ahi, j+size, bhi, b2j)
}

// longestMatch finds the longest block common to a[alo:ahi] and
// b[blo:bhi]. Among equally long blocks it prefers the one starting
// earliest in a, then earliest in b.
func longestMatch(a []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] is the length of the common block ending at a[i], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
