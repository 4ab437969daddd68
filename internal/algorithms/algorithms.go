// package algorithms provides generic slice helpers.
package algorithms

// Map returns a new slice holding f applied to each element of s.
func Map[T, R any](s []T, f func(T) R) []R {
	r := make([]R, 0, len(s))
	for _, v := range s {
		r = append(r, f(v))
	}
	return r
}

// Filter returns the elements of s for which keep returns true.
func Filter[T any](s []T, keep func(T) bool) []T {
	r := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			r = append(r, v)
		}
	}
	return r
}

// Uniq returns s with repeated elements removed. The first occurrence of
// each element is kept, so the order of s is preserved.
func Uniq[T comparable](s []T) []T {
	seen := make(map[T]bool, len(s))
	return Filter(s, func(v T) bool {
		if seen[v] {
			return false
		}
		seen[v] = true
		return true
	})
}
