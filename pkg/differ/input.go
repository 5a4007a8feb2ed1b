package differ

import (
	"iter"
	"reflect"
)

// Iterable is implemented by collections that expose their items as a
// sequence.
type Iterable interface {
	All() iter.Seq[any]
}

// IsListLike reports whether collection can be diffed: a slice, an array,
// a pointer to one, an iter.Seq of any element type, or an Iterable.
// Maps and iter.Seq2 yield pairs rather than items and are not list-like.
func IsListLike(collection any) bool {
	if collection == nil {
		return false
	}
	_, ok := sequence(collection)
	return ok
}

func emptySeq(func(any) bool) {}

// items returns the sequence of items in collection. A nil collection is
// treated as empty.
func items(collection any) (iter.Seq[any], error) {
	if collection == nil {
		return emptySeq, nil
	}
	seq, ok := sequence(collection)
	if !ok {
		return nil, &InvalidInputError{Value: collection}
	}
	return seq, nil
}

func sequence(collection any) (iter.Seq[any], bool) {
	switch c := collection.(type) {
	case []any:
		return func(yield func(any) bool) {
			for _, item := range c {
				if !yield(item) {
					return
				}
			}
		}, true
	case iter.Seq[any]:
		if c == nil {
			return emptySeq, true
		}
		return c, true
	case Iterable:
		return c.All(), true
	}

	rv := reflect.ValueOf(collection)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		if k := rv.Elem().Kind(); k != reflect.Slice && k != reflect.Array {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, true
	case reflect.Func:
		if !isSeqFunc(rv.Type()) {
			return nil, false
		}
		if rv.IsNil() {
			return emptySeq, true
		}
		return func(yield func(any) bool) {
			for v := range rv.Seq() {
				if !yield(v.Interface()) {
					return
				}
			}
		}, true
	}
	return nil, false
}

// isSeqFunc reports whether t has the shape func(yield func(T) bool).
func isSeqFunc(t reflect.Type) bool {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	yield := t.In(0)
	return yield.Kind() == reflect.Func &&
		yield.NumIn() == 1 &&
		yield.NumOut() == 1 &&
		yield.Out(0).Kind() == reflect.Bool
}
