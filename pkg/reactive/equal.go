package reactive

import (
	"math"
	"reflect"
)

// SameValue reports whether a and b are the same value for change detection.
//
// Comparable values use ==, except that NaN equals NaN and +0 differs from -0.
// Maps, slices, channels and pointers compare by identity, never by
// contents: storing the same map again is not a change, storing an equal
// copy is. Funcs are never equal, since distinct closures of one literal
// share a code pointer.
func SameValue(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case float64:
		bv, ok := b.(float64)
		return ok && sameFloat(av, bv)
	case float32:
		bv, ok := b.(float32)
		return ok && sameFloat(float64(av), float64(bv))
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Reactive:
		if bv, ok := b.(*Reactive); ok {
			return av == bv
		}
		return false
	}
	if b == nil {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Type().Comparable() {
		return safeEqual(a, b)
	}
	return false
}

// sameFloat treats NaN as equal to itself and keeps signed zeros apart.
func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if a == 0 && b == 0 {
		return math.Signbit(a) == math.Signbit(b)
	}
	return a == b
}

// safeEqual compares comparable values, treating a runtime comparison panic
// (interface fields holding uncomparable values) as "not equal".
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// mapIdentity returns the identity of a map value.
func mapIdentity(m Object) (uintptr, bool) {
	if m == nil {
		return 0, false
	}
	return reflect.ValueOf(m).Pointer(), true
}
