// Package repeat keeps a list of rendered views in step with a collection.
//
// A Repeater owns an IterableDiffer. Each Apply call diffs the new collection
// and replays the resulting operations against its views, creating views for
// inserted items, dropping removed ones, moving the rest, and refreshing views
// whose item changed identity under a stable tracking key. The patches it
// returns describe the same edits for a remote copy of the list.
//
//	r := repeat.New(func(item any) string { return fmt.Sprint(item) })
//	patches, err := r.Apply([]string{"a", "b"})
package repeat
