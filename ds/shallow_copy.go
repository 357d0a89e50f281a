package ds

// ShallowCopy copies the slice header's elements so callers can't append into
// or reorder the owner's backing array. A nil input stays nil.
func ShallowCopy[T any](ts []T) []T {
	if ts == nil {
		return nil
	}
	tsCopy := make([]T, len(ts))
	copy(tsCopy, ts)
	return tsCopy
}
