package differ

import (
	"iter"
	"time"
)

// Stats summarizes one Check pass.
type Stats struct {
	Length          int
	Added           int
	Moved           int
	Removed         int
	IdentityChanged int
	Dirty           bool
	Duration        time.Duration
}

// Observer is notified after every successful Check.
type Observer interface {
	ObserveCheck(Stats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Stats)

// ObserveCheck calls f(s).
func (f ObserverFunc) ObserveCheck(s Stats) {
	f(s)
}

// Option configures an IterableDiffer.
type Option func(*IterableDiffer)

// WithTrackBy sets the tracking function. nil keeps TrackByIdentity.
func WithTrackBy(fn TrackByFunc) Option {
	return func(d *IterableDiffer) {
		if fn != nil {
			d.trackBy = fn
		}
	}
}

// WithEquality sets the predicate used to detect identity changes between
// items that share a tracking key. nil keeps Identical.
func WithEquality(fn EqualFunc) Option {
	return func(d *IterableDiffer) {
		if fn != nil {
			d.equal = fn
		}
	}
}

// WithObserver registers an observer called after every Check.
func WithObserver(o Observer) Option {
	return func(d *IterableDiffer) {
		d.observer = o
	}
}

// IterableChanges is the read side of a diff.
type IterableChanges interface {
	ForEachItem() iter.Seq[ChangeRecord]
	ForEachPreviousItem() iter.Seq[ChangeRecord]
	ForEachAddedItem() iter.Seq[ChangeRecord]
	ForEachMovedItem() iter.Seq[ChangeRecord]
	ForEachRemovedItem() iter.Seq[ChangeRecord]
	ForEachIdentityChange() iter.Seq[ChangeRecord]
	ForEachOperation() iter.Seq[Operation]
}

// Differ computes changes between successive snapshots of a collection.
type Differ interface {
	// Diff returns the changes since the previous call, or nil when
	// nothing changed.
	Diff(collection any) (IterableChanges, error)
}

// IterableDiffer is the default Differ. The zero value is not usable;
// create one with New.
type IterableDiffer struct {
	arena    arena
	linked   *dupMap // records placed in the iteration list
	unlinked *dupMap // records evicted during the current pass

	itHead, itTail                           handle
	previousItHead                           handle
	additionsHead, additionsTail             handle
	movesHead, movesTail                     handle
	removalsHead, removalsTail               handle
	identityChangesHead, identityChangesTail handle

	length     int
	collection any

	trackBy  TrackByFunc
	equal    EqualFunc
	observer Observer
}

// New returns an empty differ.
func New(opts ...Option) *IterableDiffer {
	d := &IterableDiffer{
		itHead:              nilHandle,
		itTail:              nilHandle,
		previousItHead:      nilHandle,
		additionsHead:       nilHandle,
		additionsTail:       nilHandle,
		movesHead:           nilHandle,
		movesTail:           nilHandle,
		removalsHead:        nilHandle,
		removalsTail:        nilHandle,
		identityChangesHead: nilHandle,
		identityChangesTail: nilHandle,
		trackBy:             TrackByIdentity,
		equal:               Identical,
	}
	d.linked = newDupMap(&d.arena)
	d.unlinked = newDupMap(&d.arena)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the length of the last diffed collection.
func (d *IterableDiffer) Len() int {
	return d.length
}

// Collection returns the last diffed collection. No copy is taken.
func (d *IterableDiffer) Collection() any {
	return d.collection
}

// IsDirty reports whether the last Check found any change.
func (d *IterableDiffer) IsDirty() bool {
	return d.additionsHead != nilHandle ||
		d.movesHead != nilHandle ||
		d.removalsHead != nilHandle ||
		d.identityChangesHead != nilHandle
}

// Diff checks collection and returns the differ itself when something
// changed, or nil when the collection matches the previous one.
func (d *IterableDiffer) Diff(collection any) (IterableChanges, error) {
	dirty, err := d.Check(collection)
	if err != nil {
		return nil, err
	}
	if !dirty {
		return nil, nil
	}
	return d, nil
}

// Check diffs collection against the previous snapshot and reports whether
// anything changed. A nil collection is treated as empty.
func (d *IterableDiffer) Check(collection any) (bool, error) {
	seq, err := items(collection)
	if err != nil {
		return false, err
	}

	start := time.Now()
	d.reset()

	cursor := d.itHead
	mayBeDirty := false
	index := 0
	for item := range seq {
		rawKey := d.trackBy(index, item)
		key := normalizeKey(rawKey)
		if cursor == nilHandle || d.arena.at(cursor).key != key {
			cursor = d.mismatch(cursor, item, key, rawKey, index)
			mayBeDirty = true
		} else {
			if mayBeDirty {
				// A run of duplicate keys can match positionally while an
				// evicted record with the same key belongs here.
				cursor = d.verifyReinsertion(cursor, key, index)
			}
			if !d.equal(d.arena.at(cursor).item, item) {
				d.addIdentityChange(cursor, item)
			}
		}
		cursor = d.arena.at(cursor).next
		index++
	}
	d.length = index
	d.truncate(cursor)
	d.collection = collection

	dirty := d.IsDirty()
	if d.observer != nil {
		d.observer.ObserveCheck(d.stats(dirty, time.Since(start)))
	}
	return dirty, nil
}

// reset turns the changes of the previous pass into the new baseline.
func (d *IterableDiffer) reset() {
	if !d.IsDirty() {
		return
	}
	a := &d.arena

	// Removed records were only kept for the host to read.
	for h := d.removalsHead; h != nilHandle; {
		next := a.at(h).nextRemoved
		a.release(h)
		h = next
	}

	d.previousItHead = d.itHead
	for h := d.itHead; h != nilHandle; h = a.at(h).next {
		r := a.at(h)
		r.nextPrevious = r.next
	}
	for h := d.additionsHead; h != nilHandle; h = a.at(h).nextAdded {
		r := a.at(h)
		r.previousIndex = r.currentIndex
	}
	for h := d.movesHead; h != nilHandle; h = a.at(h).nextMoved {
		r := a.at(h)
		r.previousIndex = r.currentIndex
	}

	d.additionsHead, d.additionsTail = nilHandle, nilHandle
	d.movesHead, d.movesTail = nilHandle, nilHandle
	d.removalsHead, d.removalsTail = nilHandle, nilHandle
	d.identityChangesHead, d.identityChangesTail = nilHandle, nilHandle
}

// mismatch places the item at index when the record at the cursor has a
// different key. The cursor record, if any, is provisionally removed. The
// placed record is returned.
func (d *IterableDiffer) mismatch(h handle, item, key, rawKey any, index int) handle {
	var prev handle
	if h == nilHandle {
		prev = d.itTail
	} else {
		prev = d.arena.at(h).prev
		d.remove(h)
	}

	// Evicted earlier in this pass: put it back.
	if r := d.unlinked.get(key, Absent); r != nilHandle {
		if !d.equal(d.arena.at(r).item, item) {
			d.addIdentityChange(r, item)
		}
		d.reinsertAfter(r, prev, index)
		return r
	}

	// Further ahead in the iteration list: pull it back.
	if r := d.linked.get(key, index); r != nilHandle {
		if !d.equal(d.arena.at(r).item, item) {
			d.addIdentityChange(r, item)
		}
		d.moveAfter(r, prev, index)
		return r
	}

	r := d.arena.alloc(item, key, rawKey)
	d.addAfter(r, prev, index)
	return r
}

// verifyReinsertion handles a positional match after an earlier mismatch.
// If a record with the same key was evicted in this pass it takes the slot,
// and the matched record is left for the next index. Otherwise the matched
// record stays and is recorded as moved when its index shifted.
func (d *IterableDiffer) verifyReinsertion(h handle, key any, index int) handle {
	if r := d.unlinked.get(key, Absent); r != nilHandle {
		d.reinsertAfter(r, d.arena.at(h).prev, index)
		return r
	}
	if r := d.arena.at(h); r.currentIndex != index {
		r.currentIndex = index
		d.addToMoves(h, index)
	}
	return h
}

// truncate removes every record from h to the end of the iteration list.
func (d *IterableDiffer) truncate(h handle) {
	for h != nilHandle {
		next := d.arena.at(h).next
		d.addToRemovals(d.unlink(h))
		h = next
	}
	d.unlinked.clear()
}

func (d *IterableDiffer) reinsertAfter(h, prev handle, index int) handle {
	d.unlinked.remove(h)

	r := d.arena.at(h)
	before, after := r.prevRemoved, r.nextRemoved
	if before == nilHandle {
		d.removalsHead = after
	} else {
		d.arena.at(before).nextRemoved = after
	}
	if after == nilHandle {
		d.removalsTail = before
	} else {
		d.arena.at(after).prevRemoved = before
	}

	d.insertAfter(h, prev, index)
	d.addToMoves(h, index)
	return h
}

func (d *IterableDiffer) moveAfter(h, prev handle, index int) handle {
	d.unlink(h)
	d.insertAfter(h, prev, index)
	d.addToMoves(h, index)
	return h
}

func (d *IterableDiffer) addAfter(h, prev handle, index int) handle {
	d.insertAfter(h, prev, index)
	d.arena.at(h).nextAdded = nilHandle
	if d.additionsTail == nilHandle {
		d.additionsHead = h
	} else {
		d.arena.at(d.additionsTail).nextAdded = h
	}
	d.additionsTail = h
	return h
}

func (d *IterableDiffer) insertAfter(h, prev handle, index int) handle {
	next := d.itHead
	if prev != nilHandle {
		next = d.arena.at(prev).next
	}

	r := d.arena.at(h)
	r.next = next
	r.prev = prev
	if next == nilHandle {
		d.itTail = h
	} else {
		d.arena.at(next).prev = h
	}
	if prev == nilHandle {
		d.itHead = h
	} else {
		d.arena.at(prev).next = h
	}

	d.linked.put(h)
	r.currentIndex = index
	return h
}

func (d *IterableDiffer) remove(h handle) handle {
	return d.addToRemovals(d.unlink(h))
}

func (d *IterableDiffer) unlink(h handle) handle {
	d.linked.remove(h)

	r := d.arena.at(h)
	prev, next := r.prev, r.next
	if prev == nilHandle {
		d.itHead = next
	} else {
		d.arena.at(prev).next = next
	}
	if next == nilHandle {
		d.itTail = prev
	} else {
		d.arena.at(next).prev = prev
	}
	r.prev, r.next = nilHandle, nilHandle
	return h
}

func (d *IterableDiffer) addToMoves(h handle, toIndex int) handle {
	r := d.arena.at(h)
	if r.previousIndex == toIndex {
		return h
	}
	r.nextMoved = nilHandle
	if d.movesTail == nilHandle {
		d.movesHead = h
	} else {
		d.arena.at(d.movesTail).nextMoved = h
	}
	d.movesTail = h
	return h
}

func (d *IterableDiffer) addToRemovals(h handle) handle {
	d.unlinked.put(h)

	r := d.arena.at(h)
	r.currentIndex = Absent
	r.nextRemoved = nilHandle
	r.prevRemoved = d.removalsTail
	if d.removalsTail == nilHandle {
		d.removalsHead = h
	} else {
		d.arena.at(d.removalsTail).nextRemoved = h
	}
	d.removalsTail = h
	return h
}

func (d *IterableDiffer) addIdentityChange(h handle, item any) handle {
	r := d.arena.at(h)
	r.item = item
	r.nextIdentityChange = nilHandle
	if d.identityChangesTail == nilHandle {
		d.identityChangesHead = h
	} else {
		d.arena.at(d.identityChangesTail).nextIdentityChange = h
	}
	d.identityChangesTail = h
	return h
}

func (d *IterableDiffer) stats(dirty bool, elapsed time.Duration) Stats {
	s := Stats{Length: d.length, Dirty: dirty, Duration: elapsed}
	if !dirty {
		return s
	}
	for range d.ForEachAddedItem() {
		s.Added++
	}
	for range d.ForEachMovedItem() {
		s.Moved++
	}
	for range d.ForEachRemovedItem() {
		s.Removed++
	}
	for range d.ForEachIdentityChange() {
		s.IdentityChanged++
	}
	return s
}
