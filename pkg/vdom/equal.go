package vdom

import (
	"reflect"
	"sort"
	"unsafe"
)

// Equal is the default per-property change detector. It compares scalars by
// value, functions by closure identity, pointers, channels and unsafe
// pointers by identity, and maps and slices one level deep. Anything else falls back
// to reflect.DeepEqual.
func Equal(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
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
		return closure(a) == closure(b)
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !identical(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !identical(iter.Value(), other) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// identical compares one level below Equal: comparable values with ==,
// reference kinds by pointer.
func identical(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		a, b = a.Elem(), b.Elem()
		if a.Type() != b.Type() {
			return false
		}
	}
	switch a.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer, reflect.Map, reflect.Slice:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		if a.Kind() == reflect.Slice && a.Len() != b.Len() {
			return false
		}
		if a.Kind() == reflect.Func {
			return closure(a.Interface()) == closure(b.Interface())
		}
		return a.Pointer() == b.Pointer()
	}
	if a.Type().Comparable() {
		return a.Interface() == b.Interface()
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

// closure returns the data word of fn, a func value boxed in an interface.
// Funcs are pointer-shaped, so the word is the closure itself: every
// evaluation of a capturing literal gets its own, while reflect's Pointer
// only reports the shared code address.
func closure(fn any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1]
}

// ChangedKeys returns, in sorted order, the keys whose values differ between
// prev and next according to Equal, including keys present on one side only.
// Keys for which skip returns true are ignored.
func ChangedKeys(prev, next Props, skip func(string) bool) []string {
	var changed []string
	for k, pv := range prev {
		if skip != nil && skip(k) {
			continue
		}
		nv, ok := next[k]
		if !ok || !Equal(pv, nv) {
			changed = append(changed, k)
		}
	}
	for k := range next {
		if skip != nil && skip(k) {
			continue
		}
		if _, ok := prev[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
