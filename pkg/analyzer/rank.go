package analyzer

import (
	"cmp"
	"slices"
)

// rank converts a tally into Counts sorted by count descending, then key.
// n <= 0 keeps every entry.
func rank(tally map[string]int, n int) []Count {
	out := make([]Count, 0, len(tally))
	for k, c := range tally {
		out = append(out, Count{Key: k, Count: c})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ordered emits Counts for keys in the given order, zeros included.
func ordered(tally map[string]int, keys []string) []Count {
	out := make([]Count, 0, len(keys))
	for _, k := range keys {
		out = append(out, Count{Key: k, Count: tally[k]})
	}
	return out
}
