package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/repeat"
	"github.com/vmihailenco/msgpack/v5"
)

// Record is the wire form of a differ.ChangeRecord.
type Record struct {
	ID            uint64 `json:"id" msgpack:"id"`
	Item          any    `json:"item" msgpack:"item"`
	Key           any    `json:"key,omitempty" msgpack:"key,omitempty"`
	PreviousIndex int    `json:"previousIndex" msgpack:"prev"`
	CurrentIndex  int    `json:"currentIndex" msgpack:"cur"`
}

// OpKind mirrors repeat.PatchOp on the wire.
type OpKind = repeat.PatchOp

// Op is one list edit. From and To are -1 where they do not apply.
type Op struct {
	Kind OpKind `json:"kind" msgpack:"kind"`
	ID   uint64 `json:"id" msgpack:"id"`
	From int    `json:"from" msgpack:"from"`
	To   int    `json:"to" msgpack:"to"`
	Item any    `json:"item,omitempty" msgpack:"item,omitempty"`
}

// Report describes the outcome of one check.
type Report struct {
	Session         string   `json:"session,omitempty" msgpack:"session,omitempty"`
	Seq             uint64   `json:"seq" msgpack:"seq"`
	Length          int      `json:"length" msgpack:"length"`
	Dirty           bool     `json:"dirty" msgpack:"dirty"`
	Items           []Record `json:"items" msgpack:"items"`
	Added           []Record `json:"added,omitempty" msgpack:"added,omitempty"`
	Removed         []Record `json:"removed,omitempty" msgpack:"removed,omitempty"`
	Moved           []Record `json:"moved,omitempty" msgpack:"moved,omitempty"`
	IdentityChanges []Record `json:"identityChanges,omitempty" msgpack:"identityChanges,omitempty"`
	Operations      []Op     `json:"operations,omitempty" msgpack:"operations,omitempty"`
}

// NewReport builds a report from the last check of d. Change lists and
// operations are left empty when that check was clean.
func NewReport(d *differ.IterableDiffer) *Report {
	r := &Report{
		Length: d.Len(),
		Dirty:  d.IsDirty(),
		Items:  records(d.ForEachItem()),
	}
	if !r.Dirty {
		return r
	}
	r.Added = records(d.ForEachAddedItem())
	r.Removed = records(d.ForEachRemovedItem())
	r.Moved = records(d.ForEachMovedItem())
	r.IdentityChanges = records(d.ForEachIdentityChange())
	r.Operations = FromPatches(repeat.Patches(d))
	return r
}

// NewItemsReport describes the current items of d without change lists.
func NewItemsReport(d *differ.IterableDiffer) *Report {
	return &Report{
		Length: d.Len(),
		Items:  records(d.ForEachItem()),
	}
}

// FromPatches converts list edits to wire operations.
func FromPatches(patches []repeat.Patch) []Op {
	ops := make([]Op, len(patches))
	for i, p := range patches {
		ops[i] = Op{Kind: p.Op, ID: p.ID, From: p.From, To: p.To, Item: wireItem(p.Item)}
	}
	return ops
}

// Patches converts wire operations back to list edits.
func Patches(ops []Op) []repeat.Patch {
	patches := make([]repeat.Patch, len(ops))
	for i, op := range ops {
		patches[i] = repeat.Patch{Op: op.Kind, ID: op.ID, From: op.From, To: op.To, Item: op.Item}
	}
	return patches
}

func records(seq iter.Seq[differ.ChangeRecord]) []Record {
	var out []Record
	for cr := range seq {
		rec := Record{
			ID:            cr.ID,
			Item:          wireItem(cr.Item),
			PreviousIndex: cr.PreviousIndex,
			CurrentIndex:  cr.CurrentIndex,
		}
		if !differ.Identical(cr.TrackingKey, cr.Item) {
			rec.Key = wireItem(cr.TrackingKey)
		}
		out = append(out, rec)
	}
	return out
}

// wireItem decodes raw JSON items so that both encodings carry the
// document rather than its bytes.
func wireItem(item any) any {
	raw, ok := item.(json.RawMessage)
	if !ok {
		return item
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// EncodeJSON encodes r as JSON.
func EncodeJSON(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeJSON decodes a JSON report.
func DecodeJSON(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("protocol: decode json report: %w", err)
	}
	return &r, nil
}

// EncodeMsgpack encodes r as msgpack.
func EncodeMsgpack(r *Report) ([]byte, error) {
	return msgpack.Marshal(r)
}

// DecodeMsgpack decodes a msgpack report. Integers inside items decode as
// int64, uint64 or float64.
func DecodeMsgpack(data []byte) (*Report, error) {
	var r Report
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("protocol: decode msgpack report: %w", err)
	}
	return &r, nil
}
