// Package sortutil holds the ordering helpers behind deterministic output.
package sortutil

import "sort"

// SortedKeys returns the keys of m in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Without returns paths minus every element present in drop, preserving order.
func Without(paths []string, drop map[string]bool) []string {
	if len(drop) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !drop[p] {
			out = append(out, p)
		}
	}
	return out
}
