package repeat

import (
	"fmt"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
)

// PatchOp is the type of list edit.
type PatchOp uint8

const (
	PatchInsert PatchOp = 0x01 // Insert a view at To
	PatchRemove PatchOp = 0x02 // Remove the view at From
	PatchMove   PatchOp = 0x03 // Move the view at From to To
	PatchUpdate PatchOp = 0x04 // Replace the item of the view at To
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchInsert:
		return "Insert"
	case PatchRemove:
		return "Remove"
	case PatchMove:
		return "Move"
	case PatchUpdate:
		return "Update"
	default:
		return "Unknown"
	}
}

// Patch is a single edit to apply to a list, in order. From and To are
// differ.Absent where they do not apply.
type Patch struct {
	Op   PatchOp
	ID   uint64 // Record ID of the affected entry
	From int
	To   int
	Item any // New item for Insert and Update
}

func (p Patch) String() string {
	switch p.Op {
	case PatchInsert:
		return fmt.Sprintf("Insert(%v@%d)", p.Item, p.To)
	case PatchRemove:
		return fmt.Sprintf("Remove(%d)", p.From)
	case PatchMove:
		return fmt.Sprintf("Move(%d->%d)", p.From, p.To)
	case PatchUpdate:
		return fmt.Sprintf("Update(%v@%d)", p.Item, p.To)
	default:
		return "Unknown"
	}
}

// Patches converts the operations of the last check into list edits.
// Identity changes follow the structural edits, addressed by final index.
func Patches(c differ.IterableChanges) []Patch {
	var out []Patch
	for op := range c.ForEachOperation() {
		r := op.Record
		switch {
		case op.PreviousIndex == differ.Absent:
			out = append(out, Patch{Op: PatchInsert, ID: r.ID, From: differ.Absent, To: op.CurrentIndex, Item: r.Item})
		case op.CurrentIndex == differ.Absent:
			out = append(out, Patch{Op: PatchRemove, ID: r.ID, From: op.PreviousIndex, To: differ.Absent})
		default:
			out = append(out, Patch{Op: PatchMove, ID: r.ID, From: op.PreviousIndex, To: op.CurrentIndex})
		}
	}
	for r := range c.ForEachIdentityChange() {
		out = append(out, Patch{Op: PatchUpdate, ID: r.ID, From: differ.Absent, To: r.CurrentIndex, Item: r.Item})
	}
	return out
}

// ReplayItems applies patches to a copy of items and returns the result.
// Replaying the patches of a check against the previous collection yields
// the new one.
func ReplayItems[T any](items []T, patches []Patch) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)
	for _, p := range patches {
		var err error
		if out, err = applyOne(out, p, func(item any) (T, error) {
			v, ok := item.(T)
			if !ok && item != nil {
				var zero T
				return zero, fmt.Errorf("repeat: patch item %v (%T) is not a %T", item, item, zero)
			}
			return v, nil
		}, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// applyOne applies p to list. create builds a new entry for Insert; update,
// when non-nil, refreshes an entry for Update, otherwise it is replaced by
// create's result.
func applyOne[T any](list []T, p Patch, create func(any) (T, error), update func(T, any) T) ([]T, error) {
	switch p.Op {
	case PatchInsert:
		if p.To < 0 || p.To > len(list) {
			return nil, fmt.Errorf("repeat: insert index %d out of range [0,%d]", p.To, len(list))
		}
		v, err := create(p.Item)
		if err != nil {
			return nil, err
		}
		return insertAt(list, p.To, v), nil
	case PatchRemove:
		if p.From < 0 || p.From >= len(list) {
			return nil, fmt.Errorf("repeat: remove index %d out of range [0,%d)", p.From, len(list))
		}
		return removeAt(list, p.From), nil
	case PatchMove:
		if p.From < 0 || p.From >= len(list) || p.To < 0 || p.To >= len(list) {
			return nil, fmt.Errorf("repeat: move %d->%d out of range [0,%d)", p.From, p.To, len(list))
		}
		v := list[p.From]
		return insertAt(removeAt(list, p.From), p.To, v), nil
	case PatchUpdate:
		if p.To < 0 || p.To >= len(list) {
			return nil, fmt.Errorf("repeat: update index %d out of range [0,%d)", p.To, len(list))
		}
		if update != nil {
			list[p.To] = update(list[p.To], p.Item)
			return list, nil
		}
		v, err := create(p.Item)
		if err != nil {
			return nil, err
		}
		list[p.To] = v
		return list, nil
	default:
		return nil, fmt.Errorf("repeat: unknown patch op %d", p.Op)
	}
}

func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1]
}
