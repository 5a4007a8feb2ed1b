// Package differ implements incremental change detection for ordered
// collections.
//
// An IterableDiffer is fed successive snapshots of a collection. Each call
// to Check (or Diff) walks the new snapshot once and reports how the
// previous snapshot became the new one: which items were added, removed,
// moved, or replaced by a different value under the same tracking key.
//
// # Tracking
//
// Items are matched across snapshots by a tracking key computed by a
// TrackByFunc. The default tracks items by identity: two items match when
// they are the same value (pointers compare by address, slices and maps by
// reference, NaN matches NaN). A custom function can extract a primary key
// so that a new value with the same key is reported as an identity change
// instead of a removal followed by an addition.
//
//	d := differ.New(differ.WithTrackBy(func(_ int, item any) any {
//	    return item.(*Row).ID
//	}))
//
// # Reading changes
//
// After a dirty Check, the host walks the categories it needs:
//
//	for op := range d.ForEachOperation() {
//	    switch {
//	    case op.PreviousIndex == differ.Absent:
//	        // insert a view for op.Record at op.CurrentIndex
//	    case op.CurrentIndex == differ.Absent:
//	        // remove the view at op.PreviousIndex
//	    default:
//	        // move the view from op.PreviousIndex to op.CurrentIndex
//	    }
//	}
//
// ForEachOperation yields a sequence of single-slot operations that, applied
// in order to the previous layout, produce the current layout.
//
// # Concurrency
//
// A differ is not safe for concurrent use. Check mutates the differ in
// place and must complete before any iteration method is called.
package differ
