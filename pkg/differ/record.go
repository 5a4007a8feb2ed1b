package differ

import (
	"fmt"
	"strconv"
)

// Absent marks a missing index: the previous index of an added item or the
// current index of a removed one.
const Absent = -1

// handle addresses a record in the arena.
type handle int32

const nilHandle handle = -1

// record is one tracked item. The same record is threaded through the
// iteration list, the previous-iteration shadow list, the additions, moves,
// removals and identity-change lists, and a duplicate-key sublist, using
// one pair of link fields per list.
type record struct {
	id     uint64
	item   any
	key    any // normalized tracking key
	rawKey any // tracking key as returned by the TrackByFunc

	currentIndex  int
	previousIndex int

	prev, next         handle
	nextPrevious       handle
	nextAdded          handle
	nextMoved          handle
	prevRemoved        handle
	nextRemoved        handle
	nextIdentityChange handle
	prevDup, nextDup   handle
}

// arena owns every record of a differ. Released slots are reused by later
// allocations; the record id is never reused.
type arena struct {
	records []record
	free    []handle
	lastID  uint64
}

func (a *arena) alloc(item, key, rawKey any) handle {
	a.lastID++
	r := record{
		id:                 a.lastID,
		item:               item,
		key:                key,
		rawKey:             rawKey,
		currentIndex:       Absent,
		previousIndex:      Absent,
		prev:               nilHandle,
		next:               nilHandle,
		nextPrevious:       nilHandle,
		nextAdded:          nilHandle,
		nextMoved:          nilHandle,
		prevRemoved:        nilHandle,
		nextRemoved:        nilHandle,
		nextIdentityChange: nilHandle,
		prevDup:            nilHandle,
		nextDup:            nilHandle,
	}
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.records[h] = r
		return h
	}
	a.records = append(a.records, r)
	return handle(len(a.records) - 1)
}

// at returns the record for h. The pointer is invalidated by alloc.
func (a *arena) at(h handle) *record {
	return &a.records[h]
}

func (a *arena) release(h handle) {
	a.records[h] = record{}
	a.free = append(a.free, h)
}

// live returns the number of records currently allocated.
func (a *arena) live() int {
	return len(a.records) - len(a.free)
}

// ChangeRecord is a snapshot of one tracked item as of the last Check.
type ChangeRecord struct {
	// ID identifies the tracked item across passes. It stays the same while
	// the item is tracked, including when it moves or changes identity.
	ID uint64

	// Item is the current value of the item.
	Item any

	// TrackingKey is the value returned by the TrackByFunc when the item
	// was first tracked.
	TrackingKey any

	// CurrentIndex is the position in the current collection, or Absent
	// if the item was removed.
	CurrentIndex int

	// PreviousIndex is the position in the previous collection, or Absent
	// if the item was added.
	PreviousIndex int
}

// String renders the record as "item" when its position is unchanged and
// as "item[previous->current]" otherwise.
func (r ChangeRecord) String() string {
	if r.PreviousIndex == r.CurrentIndex {
		return fmt.Sprint(r.Item)
	}
	return fmt.Sprintf("%v[%s->%s]", r.Item, formatIndex(r.PreviousIndex), formatIndex(r.CurrentIndex))
}

func formatIndex(i int) string {
	if i == Absent {
		return "nil"
	}
	return strconv.Itoa(i)
}

func (r *record) snapshot() ChangeRecord {
	return ChangeRecord{
		ID:            r.id,
		Item:          r.item,
		TrackingKey:   r.rawKey,
		CurrentIndex:  r.currentIndex,
		PreviousIndex: r.previousIndex,
	}
}
