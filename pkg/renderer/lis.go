package renderer

// LongestIncreasingSubsequence returns the indices of a longest strictly
// increasing subsequence of arr, ignoring zero entries. Zeros mark new nodes
// and never take part.
//
// It runs in O(n log n): tails holds, for each length, the index of the
// smallest value ending an increasing run of that length, and prev links
// each index to its predecessor for reconstruction.
func LongestIncreasingSubsequence(arr []int) []int {
	prev := make([]int, len(arr))
	tails := make([]int, 0, len(arr))

	for i, v := range arr {
		if v == 0 {
			continue
		}
		if n := len(tails); n == 0 || arr[tails[n-1]] < v {
			if n > 0 {
				prev[i] = tails[n-1]
			}
			tails = append(tails, i)
			continue
		}
		// first tail whose value is >= v
		lo, hi := 0, len(tails)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if arr[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[tails[lo]] {
			if lo > 0 {
				prev[i] = tails[lo-1]
			}
			tails[lo] = i
		}
	}

	result := make([]int, len(tails))
	if len(tails) == 0 {
		return result
	}
	k := tails[len(tails)-1]
	for u := len(tails) - 1; u >= 0; u-- {
		result[u] = k
		k = prev[k]
	}
	return result
}
