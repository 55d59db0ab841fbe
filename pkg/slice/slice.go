// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with the generic
helpers the services share: projection, order-preserving de-duplication and
set construction.
*/
package slice

// Map projects every element of input through transform. A nil input stays nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Unique drops repeated elements and keeps the first occurrence of each, so
// the relative order of input survives.
func Unique[T comparable](input []T) []T {
	seen := make(map[T]struct{}, len(input))
	result := make([]T, 0, len(input))
	for _, v := range input {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// FlatSet collects the values every element of input yields into one set.
func FlatSet[T any, K comparable](input []T, values func(T) []K) map[K]struct{} {
	set := make(map[K]struct{})
	for _, v := range input {
		for _, key := range values(v) {
			set[key] = struct{}{}
		}
	}
	return set
}
