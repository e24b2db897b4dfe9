package util

import (
	"golang.org/x/exp/constraints"
	"sort"
)

func ContainsString(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

func sortSlice[T constraints.Ordered](s []T) {
	sort.Slice(s, func(i, j int) bool {
		return s[i] < s[j]
	})
}

func SortedKeys[T constraints.Ordered, K any](input map[T]K) []T {
	result := make([]T, 0, len(input))
	for k := range input {
		result = append(result, k)
	}
	sortSlice(result)
	return result
}

// ValuesByKey returns the values of input ordered by their keys
func ValuesByKey[T constraints.Ordered, K any](input map[T]K) []K {
	result := make([]K, 0, len(input))
	for _, k := range SortedKeys(input) {
		result = append(result, input[k])
	}
	return result
}
