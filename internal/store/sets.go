// Package store holds the three per-device state containers: onboarding,
// auth session and recipe preferences. Every mutation runs to completion under
// the store's lock and schedules a snapshot of the persisted fields.
package store

import "fitpulse/internal/persist"

// toggle removes v from set when present and appends it otherwise.
// The input slice is never modified.
func toggle[T comparable](set []T, v T) []T {
	out := make([]T, 0, len(set)+1)
	found := false
	for _, item := range set {
		if item == v {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

func contains[T comparable](set []T, v T) bool {
	for _, item := range set {
		if item == v {
			return true
		}
	}
	return false
}

// dedupe keeps the first occurrence of each value. A nil input yields an empty slice.
func dedupe[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func orDiscard(snap persist.Snapshotter) persist.Snapshotter {
	if snap == nil {
		return persist.Discard{}
	}
	return snap
}
