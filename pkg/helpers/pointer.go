package helpers

// Ptr returns a pointer to a copy of val.
func Ptr[T any](val T) *T {
	return &val
}

// ValueOr dereferences val, or returns fallback for nil.
func ValueOr[T any](val *T, fallback T) T {
	if val == nil {
		return fallback
	}
	return *val
}
