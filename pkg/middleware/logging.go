package middleware

import (
	"context"
	"log/slog"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
)

// Logging returns an observer that logs every check at Debug level.
func Logging(logger *slog.Logger) differ.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return differ.ObserverFunc(func(s differ.Stats) {
		if !logger.Enabled(context.Background(), slog.LevelDebug) {
			return
		}
		logger.Debug("check",
			"length", s.Length,
			"dirty", s.Dirty,
			"added", s.Added,
			"moved", s.Moved,
			"removed", s.Removed,
			"identity_changed", s.IdentityChanged,
			"duration", s.Duration,
		)
	})
}

type multiObserver []differ.Observer

func (m multiObserver) ObserveCheck(s differ.Stats) {
	for _, o := range m {
		o.ObserveCheck(s)
	}
}

// Multi returns an observer that forwards to each non-nil observer in order.
func Multi(observers ...differ.Observer) differ.Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}
