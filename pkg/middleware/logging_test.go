package middleware

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
)

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d := differ.New(differ.WithObserver(Logging(logger)))
	if _, err := d.Check([]string{"a", "b"}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"msg=check", "length=2", "dirty=true", "added=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggingObserverBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	Logging(logger).ObserveCheck(differ.Stats{Length: 1})
	if buf.Len() != 0 {
		t.Errorf("log output = %q, want nothing", buf.String())
	}
}

func TestMulti(t *testing.T) {
	var a, b []differ.Stats
	m := Multi(
		differ.ObserverFunc(func(s differ.Stats) { a = append(a, s) }),
		nil,
		differ.ObserverFunc(func(s differ.Stats) { b = append(b, s) }),
	)
	m.ObserveCheck(differ.Stats{Length: 3})
	if len(a) != 1 || len(b) != 1 || a[0].Length != 3 {
		t.Errorf("a = %v, b = %v", a, b)
	}
}
