package cmp

// a == b as predicator function
func EqEq[T comparable](a, b T) bool {
	return a == b
}

// SliceContentEq checks that two slices have same contents, ignoring order.
func SliceContentEq[T comparable](a []T, b []T) bool {
	return SliceContentEqWith(a, b, EqEq[T])
}

// SliceContentEqWith checks that two slices have same contents under
// pred, ignoring order.
func SliceContentEqWith[T any, U any](a []T, b []U, pred func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}

	used := make([]bool, len(b))
found:
	for _, ea := range a {
		for i, eb := range b {
			if used[i] || !pred(ea, eb) {
				continue
			}
			used[i] = true
			continue found
		}
		return false
	}
	return true
}

// SliceEqWith checks that two slices are equal element by element, in order.
func SliceEqWith[T any, U any](a []T, b []U, pred func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !pred(a[i], b[i]) {
			return false
		}
	}
	return true
}

// MapEqWith checks that two maps have the same keys, with values equal
// under pred.
func MapEqWith[K comparable, V any, W any](a map[K]V, b map[K]W, pred func(V, W) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !pred(va, vb) {
			return false
		}
	}
	return true
}
