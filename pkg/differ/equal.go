package differ

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// TrackByFunc returns the tracking key of the item at index.
type TrackByFunc func(index int, item any) any

// EqualFunc reports whether two items are the same for the purpose of
// identity-change detection.
type EqualFunc func(a, b any) bool

// TrackByIdentity tracks items by the item itself.
func TrackByIdentity(_ int, item any) any {
	return item
}

// Identical reports whether a and b are the same value: comparable values
// compare with ==, NaN equals NaN, and slices, maps and funcs compare by
// reference. Structs and arrays that hold slices, maps or funcs compare
// field by field, with those fields compared by reference.
func Identical(a, b any) bool {
	return normalizeKey(a) == normalizeKey(b)
}

// nanKey stands in for a NaN so that NaN keys match each other.
type nanKey struct {
	typ reflect.Type
}

// refKey identifies a non-comparable reference value by address.
type refKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// reprKey identifies a non-comparable struct or array by its fields, with
// reference fields rendered as type and address.
type reprKey struct {
	typ  reflect.Type
	repr string
}

// normalizeKey maps v to a value usable as a map key and with ==.
func normalizeKey(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int, int32, int64, uint, uint32, uint64:
		return v
	case float64:
		if math.IsNaN(x) {
			return nanKey{typ: reflect.TypeOf(x)}
		}
		return v
	case float32:
		if math.IsNaN(float64(x)) {
			return nanKey{typ: reflect.TypeOf(x)}
		}
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return refKey{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}
	case reflect.Map, reflect.Func:
		return refKey{typ: rv.Type(), ptr: rv.Pointer()}
	case reflect.Float32, reflect.Float64:
		if math.IsNaN(rv.Float()) {
			return nanKey{typ: rv.Type()}
		}
	}
	if !rv.Comparable() {
		var b strings.Builder
		writeRepr(&b, rv)
		return reprKey{typ: rv.Type(), repr: b.String()}
	}
	return v
}

// writeRepr renders rv so that two values render alike only when every
// reference inside them is the same and every other field is equal.
func writeRepr(b *strings.Builder, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Struct:
		b.WriteByte('{')
		for i := range rv.NumField() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeRepr(b, rv.Field(i))
		}
		b.WriteByte('}')
	case reflect.Array:
		b.WriteByte('[')
		for i := range rv.Len() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeRepr(b, rv.Index(i))
		}
		b.WriteByte(']')
	case reflect.Interface:
		if rv.IsNil() {
			b.WriteString("nil")
			return
		}
		fmt.Fprintf(b, "(%s)", rv.Elem().Type())
		writeRepr(b, rv.Elem())
	case reflect.Slice:
		fmt.Fprintf(b, "%s@%#x/%d", rv.Type(), rv.Pointer(), rv.Len())
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		fmt.Fprintf(b, "%s@%#x", rv.Type(), rv.Pointer())
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); math.IsNaN(f) {
			b.WriteString("NaN")
		} else {
			fmt.Fprintf(b, "%v", f)
		}
	default:
		fmt.Fprintf(b, "%#v", rv)
	}
}
