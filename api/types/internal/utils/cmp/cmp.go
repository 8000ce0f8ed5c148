package cmp

// SliceContentEqWith returns true when a and b have the same contents
// under eq, ignoring order.
func SliceContentEqWith[T any, U any](a []T, b []U, eq func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}

	used := make([]bool, len(b))
AOUTER:
	for _, ea := range a {
		for i, eb := range b {
			if used[i] || !eq(ea, eb) {
				continue
			}
			used[i] = true
			continue AOUTER
		}
		return false
	}
	return true
}

// SliceEqualUnordered returns true when a and b have equal contents,
// ignoring order. Elements are compared with their Equal method.
func SliceEqualUnordered[T interface{ Equal(T) bool }](a, b []T) bool {
	return SliceContentEqWith(a, b, func(x, y T) bool { return x.Equal(y) })
}

// SliceEqWith returns true when a and b are equal element by element,
// in order, under eq.
func SliceEqWith[T any, U any](a []T, b []U, eq func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}
