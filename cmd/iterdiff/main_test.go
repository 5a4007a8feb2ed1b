package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/config"
	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/repeat"
)

// run executes the CLI with a fresh config in a temp dir.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.ConfigFileName)
	if err := config.New().SaveTo(cfgPath); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	a := &app{stdin: strings.NewReader(stdin)}
	root := a.rootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestDiffText(t *testing.T) {
	a := writeFile(t, "a.json", `[1,2,3]`)
	b := writeFile(t, "b.json", `[1,2,3,4]`)

	out, err := run(t, "", "diff", a, b)
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	for _, want := range []string{"(4 items, changed)", "additions: 4[nil->3]", "insert 4 at 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDiffUnchanged(t *testing.T) {
	a := writeFile(t, "a.json", `[{"id":1},{"id":2}]`)
	b := writeFile(t, "b.json", `[{"id":1},{"id":2}]`)

	out, err := run(t, "", "diff", a, b)
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	if !strings.Contains(out, "(2 items, unchanged)") {
		t.Errorf("output = %q", out)
	}
}

func TestDiffStdin(t *testing.T) {
	a := writeFile(t, "a.json", `["x","y"]`)

	out, err := run(t, `["y","x"]`, "diff", a, "-")
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	if !strings.Contains(out, "moves: y[1->0], x[0->1]") {
		t.Errorf("output = %q", out)
	}
}

func TestDiffJSON(t *testing.T) {
	a := writeFile(t, "a.json", `[{"id":1,"v":"a"},{"id":2,"v":"b"}]`)
	b := writeFile(t, "b.json", `[{"id":2,"v":"b"},{"id":1,"v":"z"}]`)

	out, err := run(t, "", "diff", "--track-by", "id", "-o", "json", a, b)
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	r, err := protocol.DecodeJSON([]byte(strings.TrimSpace(out)))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if !r.Dirty || r.Length != 2 {
		t.Errorf("report dirty=%v length=%d", r.Dirty, r.Length)
	}
	if len(r.IdentityChanges) != 1 {
		t.Errorf("identity changes = %v, want 1", r.IdentityChanges)
	}
	if len(r.Added) != 0 || len(r.Removed) != 0 {
		t.Errorf("added=%v removed=%v, want none", r.Added, r.Removed)
	}
}

func TestDiffBinary(t *testing.T) {
	a := writeFile(t, "a.json", `["a","b","c"]`)
	b := writeFile(t, "b.json", `["a","c"]`)

	out, err := run(t, "", "diff", "-o", "binary", a, b)
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	ops, err := protocol.DecodeOperations([]byte(out))
	if err != nil {
		t.Fatalf("DecodeOperations() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != repeat.PatchRemove || ops[0].From != 1 {
		t.Errorf("ops = %+v, want one Remove(1)", ops)
	}
}

func TestDiffErrors(t *testing.T) {
	a := writeFile(t, "a.json", `[1]`)
	obj := writeFile(t, "obj.json", `{"a":1}`)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"one snapshot", []string{"diff", a}, "E151"},
		{"bad format", []string{"diff", "-o", "yaml", a, a}, "E150"},
		{"missing file", []string{"diff", a, filepath.Join(t.TempDir(), "nope.json")}, "E103"},
		{"not an array", []string{"diff", a, obj}, "E102"},
		{"two strategies", []string{"diff", "--track-by", "id", "--track-by-index", a, a}, "E120"},
		{"bad lua", []string{"diff", "--track-by-lua", "return (", a, a}, "E104"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if got := errCode(err); got != tt.code {
				t.Errorf("error = %v (code %q), want %s", err, got, tt.code)
			}
		})
	}
}

func TestReplay(t *testing.T) {
	history := writeFile(t, "history.json", `[[1,2,3],[3,1],[3,1,5,1],[]]`)

	out, err := run(t, "", "replay", "--quiet", history)
	if err != nil {
		t.Fatalf("replay error = %v", err)
	}
	if !strings.Contains(out, "Replayed 3 steps") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "step 1") {
		t.Errorf("quiet output contains step reports: %q", out)
	}

	out, err = run(t, "", "replay", history)
	if err != nil {
		t.Fatalf("replay error = %v", err)
	}
	if !strings.Contains(out, "step 1 (2 items, changed)") {
		t.Errorf("output = %q", out)
	}
}

func TestReplayTooShort(t *testing.T) {
	history := writeFile(t, "history.json", `[[1,2,3]]`)
	if _, err := run(t, "", "replay", history); errCode(err) != "E151" {
		t.Errorf("error = %v, want E151", err)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "", "init", "--track-by", "id", dir)
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Errorf("output = %q", out)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TrackBy.Field != "id" {
		t.Errorf("TrackBy.Field = %q, want id", cfg.TrackBy.Field)
	}

	if _, err := run(t, "", "init", dir); errCode(err) != "E143" {
		t.Errorf("second init error = %v, want E143", err)
	}
	if _, err := run(t, "", "init", "--force", dir); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestBench(t *testing.T) {
	out, err := run(t, "", "bench", "--size", "50", "--rounds", "5", "--duplicates", "0.2")
	if err != nil {
		t.Fatalf("bench error = %v", err)
	}
	for _, want := range []string{"5 checks of 50 items", "added", "removed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestRenderItem(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{float64(3), "3"},
		{map[string]any{"id": float64(1)}, `{"id":1}`},
		{nil, "null"},
	}
	for _, tt := range tests {
		if got := renderItem(tt.in); got != tt.want {
			t.Errorf("renderItem(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
