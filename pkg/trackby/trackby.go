package trackby

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/tidwall/gjson"
)

// Identity tracks items by the item itself.
func Identity(index int, item any) any {
	return differ.TrackByIdentity(index, item)
}

// Index tracks items by position. Every change at a position is reported
// as an identity change; nothing ever moves.
func Index(index int, _ any) any {
	return index
}

// JSONContent tracks raw JSON documents by their bytes, so that documents
// decoded from different snapshots match when their content is equal.
// Other items are tracked by identity.
func JSONContent(_ int, item any) any {
	if raw, ok := rawJSON(item); ok {
		return string(raw)
	}
	return item
}

// JSONField returns a tracking function that reads path (gjson syntax)
// from items holding raw JSON: json.RawMessage, []byte or string. Strings
// and numbers keep their JSON type, so "1" and 1 are different keys.
// Items without the field fall back to JSONContent.
func JSONField(path string) differ.TrackByFunc {
	return func(index int, item any) any {
		raw, ok := rawJSON(item)
		if !ok {
			return item
		}
		res := gjson.GetBytes(raw, path)
		if !res.Exists() {
			return JSONContent(index, item)
		}
		return resultKey(res)
	}
}

func resultKey(res gjson.Result) any {
	switch res.Type {
	case gjson.String:
		return res.Str
	case gjson.Number:
		return res.Num
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return nil
	default:
		return res.Raw
	}
}

func rawJSON(item any) ([]byte, bool) {
	switch v := item.(type) {
	case json.RawMessage:
		return v, true
	case []byte:
		return v, true
	case string:
		if gjson.Valid(v) {
			return []byte(v), true
		}
	}
	return nil, false
}

// MapField returns a tracking function that reads a dot-separated path from
// items of type map[string]any, as produced by encoding/json. Items without
// the field are tracked by identity.
func MapField(path string) differ.TrackByFunc {
	parts := strings.Split(path, ".")
	return func(_ int, item any) any {
		cur := item
		for _, p := range parts {
			m, ok := cur.(map[string]any)
			if !ok {
				return item
			}
			if cur, ok = m[p]; !ok {
				return item
			}
		}
		return cur
	}
}

// EqualJSON reports whether a and b hold the same raw JSON bytes. Items
// that are not raw JSON are compared with differ.Identical.
func EqualJSON(a, b any) bool {
	ra, okA := rawJSON(a)
	rb, okB := rawJSON(b)
	if okA && okB {
		return bytes.Equal(ra, rb)
	}
	return differ.Identical(a, b)
}
