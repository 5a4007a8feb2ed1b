package differ

import (
	"iter"
	"strings"
)

// Operation is one step of the edit script produced by ForEachOperation.
// PreviousIndex is Absent for an insertion and CurrentIndex is Absent for a
// removal; otherwise the item moves from PreviousIndex to CurrentIndex.
type Operation struct {
	Record        ChangeRecord
	PreviousIndex int
	CurrentIndex  int
}

// walk yields the records of a list starting at head, following next.
func (d *IterableDiffer) walk(head handle, next func(*record) handle) iter.Seq[ChangeRecord] {
	return func(yield func(ChangeRecord) bool) {
		for h := head; h != nilHandle; {
			r := d.arena.at(h)
			h = next(r)
			if !yield(r.snapshot()) {
				return
			}
		}
	}
}

// ForEachItem yields the items of the current collection in order.
func (d *IterableDiffer) ForEachItem() iter.Seq[ChangeRecord] {
	return d.walk(d.itHead, func(r *record) handle { return r.next })
}

// ForEachPreviousItem yields the items of the previous collection in order.
func (d *IterableDiffer) ForEachPreviousItem() iter.Seq[ChangeRecord] {
	return d.walk(d.previousItHead, func(r *record) handle { return r.nextPrevious })
}

// ForEachAddedItem yields the items added by the last Check.
func (d *IterableDiffer) ForEachAddedItem() iter.Seq[ChangeRecord] {
	return d.walk(d.additionsHead, func(r *record) handle { return r.nextAdded })
}

// ForEachMovedItem yields the items whose index changed in the last Check.
// That includes items shifted by an insertion or removal before them, and
// duplicates that traded places with an equal item, so [a,a]→[b,a,a]
// reports both a's as moved. ForEachOperation is the minimal edit script
// and skips records whose adjusted position is unchanged.
func (d *IterableDiffer) ForEachMovedItem() iter.Seq[ChangeRecord] {
	return d.walk(d.movesHead, func(r *record) handle { return r.nextMoved })
}

// ForEachRemovedItem yields the items removed by the last Check.
func (d *IterableDiffer) ForEachRemovedItem() iter.Seq[ChangeRecord] {
	return d.walk(d.removalsHead, func(r *record) handle { return r.nextRemoved })
}

// ForEachIdentityChange yields the items whose value changed while their
// tracking key stayed the same.
func (d *IterableDiffer) ForEachIdentityChange() iter.Seq[ChangeRecord] {
	return d.walk(d.identityChangesHead, func(r *record) handle { return r.nextIdentityChange })
}

// ForEachOperation yields the edit script that turns the previous
// collection into the current one. Each operation is expressed against the
// layout left by the operations before it, so a host can apply them one at
// a time. Removals are yielded before other operations at the same
// position. Records whose adjusted position did not change are skipped.
func (d *IterableDiffer) ForEachOperation() iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		a := &d.arena
		nextIt := d.itHead
		nextRemove := d.removalsHead
		addRemoveOffset := 0
		var moveOffsets []int

		for nextIt != nilHandle || nextRemove != nilHandle {
			h := nextRemove
			if nextRemove == nilHandle ||
				(nextIt != nilHandle && a.at(nextIt).currentIndex < adjustedPreviousIndex(a.at(nextRemove), addRemoveOffset, moveOffsets)) {
				h = nextIt
			}
			r := a.at(h)
			adjPrevious := adjustedPreviousIndex(r, addRemoveOffset, moveOffsets)
			current := r.currentIndex

			if h == nextRemove {
				addRemoveOffset--
				nextRemove = r.nextRemoved
			} else {
				nextIt = r.next
				if r.previousIndex == Absent {
					addRemoveOffset++
				} else {
					// Slots between the move's target and source shift by one.
					localPrevious := adjPrevious - addRemoveOffset
					localCurrent := current - addRemoveOffset
					if localPrevious != localCurrent {
						moveOffsets = grow(moveOffsets, localPrevious)
						for i := 0; i < localPrevious; i++ {
							offset := moveOffsets[i]
							index := offset + i
							if localCurrent <= index && index < localPrevious {
								moveOffsets[i] = offset + 1
							}
						}
						moveOffsets = grow(moveOffsets, r.previousIndex+1)
						moveOffsets[r.previousIndex] = localCurrent - localPrevious
					}
				}
			}

			if adjPrevious != current {
				if !yield(Operation{Record: r.snapshot(), PreviousIndex: adjPrevious, CurrentIndex: current}) {
					return
				}
			}
		}
	}
}

// adjustedPreviousIndex returns the previous index of r shifted by the
// operations already replayed.
func adjustedPreviousIndex(r *record, addRemoveOffset int, moveOffsets []int) int {
	if r.previousIndex == Absent {
		return Absent
	}
	moveOffset := 0
	if r.previousIndex < len(moveOffsets) {
		moveOffset = moveOffsets[r.previousIndex]
	}
	return r.previousIndex + addRemoveOffset + moveOffset
}

// grow extends s with zeros to at least n elements.
func grow(s []int, n int) []int {
	for len(s) < n {
		s = append(s, 0)
	}
	return s
}

// Changes is a materialized copy of every category of a diff.
type Changes struct {
	Items           []ChangeRecord
	Previous        []ChangeRecord
	Added           []ChangeRecord
	Moved           []ChangeRecord
	Removed         []ChangeRecord
	IdentityChanges []ChangeRecord
	Operations      []Operation
}

// CollectChanges copies every category of c.
func CollectChanges(c IterableChanges) Changes {
	return Changes{
		Items:           collect(c.ForEachItem()),
		Previous:        collect(c.ForEachPreviousItem()),
		Added:           collect(c.ForEachAddedItem()),
		Moved:           collect(c.ForEachMovedItem()),
		Removed:         collect(c.ForEachRemovedItem()),
		IdentityChanges: collect(c.ForEachIdentityChange()),
		Operations:      collect(c.ForEachOperation()),
	}
}

// Changes copies every category of the last diff.
func (d *IterableDiffer) Changes() Changes {
	return CollectChanges(d)
}

func collect[T any](seq iter.Seq[T]) []T {
	var out []T
	for v := range seq {
		out = append(out, v)
	}
	return out
}

// String dumps every category of the last diff, one per line.
func (d *IterableDiffer) String() string {
	var b strings.Builder
	writeLine := func(name string, seq iter.Seq[ChangeRecord]) {
		b.WriteString(name)
		b.WriteString(": ")
		first := true
		for r := range seq {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(r.String())
		}
		b.WriteString("\n")
	}
	writeLine("collection", d.ForEachItem())
	writeLine("previous", d.ForEachPreviousItem())
	writeLine("additions", d.ForEachAddedItem())
	writeLine("moves", d.ForEachMovedItem())
	writeLine("removals", d.ForEachRemovedItem())
	writeLine("identityChanges", d.ForEachIdentityChange())
	return b.String()
}
