package repeat

import (
	"log/slog"
	"slices"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
)

// View is a rendered entry of a Repeater.
type View[V any] struct {
	ID    uint64 // Record ID; stable while the item stays in the collection
	Item  any
	Index int
	Value V
}

// Config configures a Repeater.
type Config[V any] struct {
	// Create renders a value for a newly inserted item. Required.
	Create func(item any) V

	// Update refreshes a value whose item changed identity. When nil the
	// value is re-created.
	Update func(value V, item any) V

	// Differ options, e.g. differ.WithTrackBy.
	Options []differ.Option

	Logger *slog.Logger
}

// Repeater maintains views for a collection across successive Apply calls.
// It is not safe for concurrent use.
type Repeater[V any] struct {
	config Config[V]
	differ *differ.IterableDiffer
	views  []View[V]
	logger *slog.Logger
}

// New creates a Repeater that renders items with create.
func New[V any](create func(item any) V, opts ...differ.Option) *Repeater[V] {
	return NewWithConfig(Config[V]{Create: create, Options: opts})
}

// NewWithConfig creates a Repeater from cfg.
func NewWithConfig[V any](cfg Config[V]) *Repeater[V] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Repeater[V]{
		config: cfg,
		differ: differ.New(cfg.Options...),
		logger: logger.With("component", "repeat"),
	}
}

// Apply diffs collection against the previous one, updates the views and
// returns the patches that were applied. A clean pass returns nil patches.
func (r *Repeater[V]) Apply(collection any) ([]Patch, error) {
	dirty, err := r.differ.Check(collection)
	if err != nil {
		return nil, err
	}
	if !dirty {
		return nil, nil
	}

	patches := Patches(r.differ)
	create := func(item any) (View[V], error) {
		return View[V]{Item: item, Value: r.config.Create(item)}, nil
	}
	update := func(v View[V], item any) View[V] {
		v.Item = item
		if r.config.Update != nil {
			v.Value = r.config.Update(v.Value, item)
		} else {
			v.Value = r.config.Create(item)
		}
		return v
	}

	// Patch a copy so a failed replay leaves the views untouched.
	views := slices.Clone(r.views)
	for _, p := range patches {
		if views, err = applyOne(views, p, create, update); err != nil {
			// The differ was checked outside Apply.
			r.logger.Error("patch replay failed", "patch", p.String(), "error", err)
			return nil, err
		}
		if p.Op == PatchInsert {
			views[p.To].ID = p.ID
		}
	}

	for i := range views {
		views[i].Index = i
	}
	r.views = views
	r.logger.Debug("applied patches", "count", len(patches), "length", len(r.views))
	return patches, nil
}

// Views returns the current views in collection order. The slice is valid
// until the next Apply.
func (r *Repeater[V]) Views() []View[V] {
	return r.views
}

// Values returns the rendered values in collection order.
func (r *Repeater[V]) Values() []V {
	out := make([]V, len(r.views))
	for i, v := range r.views {
		out[i] = v.Value
	}
	return out
}

// Len returns the number of views.
func (r *Repeater[V]) Len() int {
	return len(r.views)
}

// Differ returns the underlying differ.
func (r *Repeater[V]) Differ() *differ.IterableDiffer {
	return r.differ
}
