package node

// When runs fn only if cond holds, otherwise it returns the zero value and reads nothing.
func When[T any](cond bool, fn func() (T, error)) (T, error) {
	if !cond {
		var zero T
		return zero, nil
	}
	return fn()
}
