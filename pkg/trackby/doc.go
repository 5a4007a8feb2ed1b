// Package trackby provides tracking functions for differ.IterableDiffer.
//
// A tracking function maps an item to the key used to recognize it across
// snapshots. Beyond identity and position, items decoded from JSON can be
// tracked by a field path, and arbitrary items by a small Lua function:
//
//	d := differ.New(differ.WithTrackBy(trackby.JSONField("user.id")))
//
//	t, err := trackby.Lua(`return item.id`, logger)
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//	d := differ.New(differ.WithTrackBy(t.TrackBy))
package trackby
