package trackby

import (
	"errors"
	"log/slog"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
)

// Spec selects a tracking strategy for JSON snapshots whose items are kept
// as json.RawMessage. At most one field should be set.
type Spec struct {
	Field string `json:"field,omitempty"`
	Lua   string `json:"lua,omitempty"`
	Index bool   `json:"index,omitempty"`
}

// ErrConflictingStrategies is returned by Validate when more than one
// strategy is set.
var ErrConflictingStrategies = errors.New("trackby: only one of field, lua and index may be set")

// Validate reports whether at most one strategy is set.
func (s Spec) Validate() error {
	set := 0
	for _, on := range []bool{s.Field != "", s.Lua != "", s.Index} {
		if on {
			set++
		}
	}
	if set > 1 {
		return ErrConflictingStrategies
	}
	return nil
}

// String names the strategy for logs.
func (s Spec) String() string {
	switch {
	case s.Field != "":
		return "field:" + s.Field
	case s.Lua != "":
		return "lua"
	case s.Index:
		return "index"
	default:
		return "content"
	}
}

// Options returns differ options for s. Items are compared by their JSON
// bytes; without a strategy they are also tracked by them. The returned
// close function releases a Lua state and is never nil.
func (s Spec) Options(logger *slog.Logger) ([]differ.Option, func(), error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	track := differ.TrackByFunc(JSONContent)
	done := func() {}

	switch {
	case s.Field != "":
		track = JSONField(s.Field)
	case s.Lua != "":
		lt, err := Lua(s.Lua, logger)
		if err != nil {
			return nil, nil, err
		}
		track, done = lt.TrackBy, lt.Close
	case s.Index:
		track = Index
	}

	return []differ.Option{
		differ.WithTrackBy(track),
		differ.WithEquality(EqualJSON),
	}, done, nil
}
