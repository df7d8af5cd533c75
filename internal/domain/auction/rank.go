package auction

import "sort"

// RankMin ranks prices descending where ties share the lowest rank: one plus
// the number of strictly higher prices. Entries with include[i] false get 0
// and are not counted; a nil include ranks everything.
func RankMin(prices []int, include []bool) []int {
	in := func(i int) bool { return include == nil || include[i] }

	sorted := make([]int, 0, len(prices))
	for i, p := range prices {
		if in(i) {
			sorted = append(sorted, p)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	out := make([]int, len(prices))
	for i, p := range prices {
		if !in(i) {
			continue
		}
		// First index holding a price not above p.
		out[i] = 1 + sort.Search(len(sorted), func(k int) bool { return sorted[k] <= p })
	}
	return out
}

// RankWithin ranks like RankMin separately inside each group.
func RankWithin(prices []int, groups []string, include []bool) []int {
	byGroup := make(map[string][]int)
	for i, g := range groups {
		if include == nil || include[i] {
			byGroup[g] = append(byGroup[g], i)
		}
	}
	out := make([]int, len(prices))
	for _, idx := range byGroup {
		sub := make([]int, len(idx))
		for k, i := range idx {
			sub[k] = prices[i]
		}
		for k, r := range RankMin(sub, nil) {
			out[idx[k]] = r
		}
	}
	return out
}
