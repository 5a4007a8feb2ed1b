package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"runtime error", "E001", "Internal error", CategoryRuntime},
		{"input error", "E101", "Collection is not list-like", CategoryInput},
		{"config error", "E141", "Configuration file not found", CategoryConfig},
		{"protocol error", "E301", "Malformed operations frame", CategoryProtocol},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown flag %q", "--x")
	if err.Message != `unknown flag "--x"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != `unknown flag "--x"` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrorWrapAndIs(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := New("E001").Wrap(cause)

	if got, want := err.Error(), "E001: Internal error: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	wrapped := fmt.Errorf("serve: %w", err)
	if !stderrors.Is(wrapped, New("E001")) {
		t.Error("errors.Is(wrapped, E001) = false")
	}
	if stderrors.Is(wrapped, New("E002")) {
		t.Error("errors.Is(wrapped, E002) = true")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil) != nil")
	}
	coded := New("E141")
	if got := FromError(fmt.Errorf("load: %w", coded), "E001"); got != coded {
		t.Errorf("FromError(coded) = %v, want the coded error", got)
	}
	if got := FromError(os.ErrPermission, "E120"); got.Code != "E120" {
		t.Errorf("FromError code = %q, want E120", got.Code)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid input", &differ.InvalidInputError{Value: 1}, "E101"},
		{"wrapped invalid input", fmt.Errorf("check: %w", &differ.InvalidInputError{Value: "s"}), "E101"},
		{"bad frame", fmt.Errorf("op 2: %w", protocol.ErrTruncated), "E301"},
		{"bad magic", protocol.ErrBadMagic, "E301"},
		{"missing file", fmt.Errorf("snapshot: %w", os.ErrNotExist), "E103"},
		{"canceled", context.Canceled, "E002"},
		{"coded", New("E150"), "E150"},
		{"other", fmt.Errorf("boom"), "E001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got.Code != tt.want {
				t.Errorf("Classify(%v).Code = %q, want %q", tt.err, got.Code, tt.want)
			}
		})
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}
}

func TestFormat(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	err := New("E141").
		WithSource("iterdiff.json").
		WithSuggestion("Run 'iterdiff init'").
		Wrap(os.ErrNotExist)
	out := err.Format()

	for _, want := range []string{
		"ERROR E141: Configuration file not found",
		"  iterdiff.json",
		"No iterdiff.json was found",
		"Cause: file does not exist",
		"Hint: Run 'iterdiff init'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains ANSI codes with colors disabled")
	}
}

func TestFormatColors(t *testing.T) {
	SetColors(true)
	out := Newf(CategoryRuntime, "boom").Format()
	if !strings.Contains(out, colorRed) {
		t.Errorf("Format() = %q, want ANSI red", out)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E102").WithSource("a.json")
	if got, want := err.FormatCompact(), "a.json: E102: Snapshot could not be decoded"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E010").WithSource("01HZX").Wrap(fmt.Errorf("evicted"))
	var got map[string]string
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON is not JSON: %v", jerr)
	}
	want := map[string]string{
		"code":     "E010",
		"category": "runtime",
		"message":  "Session not found",
		"source":   "01HZX",
		"cause":    "evicted",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestPrint(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	var b strings.Builder
	Print(&b, fmt.Errorf("boom"))
	if !strings.Contains(b.String(), "ERROR E001: Internal error") {
		t.Errorf("Print() = %q", b.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if len(lines) < 2 {
		t.Errorf("wrapText produced %d lines", len(lines))
	}
}

func TestCodesHaveTemplates(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("no codes registered")
	}
	for i, code := range codes {
		tmpl, ok := Template(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
		if i > 0 && codes[i-1] >= code {
			t.Errorf("Codes() not sorted at %s", code)
		}
	}
}
