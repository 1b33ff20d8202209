package index

// MergeSearchResults merges two sorted result lists into a single sorted list
// of at most k entries. Both inputs must already be ordered by
// (distance, sequence) ascending.
func MergeSearchResults(a, b []SearchResult, k int) []SearchResult {
	if k <= 0 {
		return nil
	}
	if len(a) == 0 {
		if len(b) > k {
			return b[:k]
		}
		return b
	}
	if len(b) == 0 {
		if len(a) > k {
			return a[:k]
		}
		return a
	}

	result := make([]SearchResult, 0, k)
	i, j := 0, 0
	for len(result) < k && (i < len(a) || j < len(b)) {
		switch {
		case i == len(a):
			result = append(result, b[j])
			j++
		case j == len(b):
			result = append(result, a[i])
			i++
		case a[i].Less(b[j]):
			result = append(result, a[i])
			i++
		default:
			result = append(result, b[j])
			j++
		}
	}
	return result
}

// MergeNSearchResults merges multiple sorted result lists into a single sorted
// list of at most k entries. Shard counts are small, so repeated pairwise
// merging beats a heap here.
func MergeNSearchResults(k int, lists ...[]SearchResult) []SearchResult {
	var merged []SearchResult
	for _, l := range lists {
		merged = MergeSearchResults(merged, l, k)
	}
	return merged
}
