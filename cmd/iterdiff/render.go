package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/config"
	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/repeat"
)

// writeReport writes r in the given output format. label names the step
// in text output.
func writeReport(w io.Writer, format, label string, r *protocol.Report) error {
	switch format {
	case config.FormatText:
		_, err := io.WriteString(w, renderText(label, r))
		return err
	case config.FormatJSON:
		data, err := protocol.EncodeJSON(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case config.FormatMsgpack:
		data, err := protocol.EncodeMsgpack(r)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case config.FormatBinary:
		data, err := protocol.EncodeOperations(r.Operations)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return errors.New("E150").WithSource(format)
	}
}

func renderText(label string, r *protocol.Report) string {
	var b strings.Builder
	state := "unchanged"
	if r.Dirty {
		state = "changed"
	}
	fmt.Fprintf(&b, "%s (%d items, %s)\n", label, r.Length, state)
	if !r.Dirty {
		return b.String()
	}

	line := func(name string, recs []Record) {
		if len(recs) == 0 {
			return
		}
		parts := make([]string, len(recs))
		for i, rec := range recs {
			parts[i] = renderRecord(rec)
		}
		fmt.Fprintf(&b, "  %s: %s\n", name, strings.Join(parts, ", "))
	}
	line("additions", r.Added)
	line("moves", r.Moved)
	line("removals", r.Removed)
	line("identityChanges", r.IdentityChanges)

	if len(r.Operations) > 0 {
		b.WriteString("  operations:\n")
		for _, op := range r.Operations {
			b.WriteString("    ")
			b.WriteString(renderOp(op))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Record is a local alias to keep render signatures short.
type Record = protocol.Record

func renderRecord(r Record) string {
	item := renderItem(r.Item)
	if r.PreviousIndex == r.CurrentIndex {
		return item
	}
	return fmt.Sprintf("%s[%s->%s]", item, renderIndex(r.PreviousIndex), renderIndex(r.CurrentIndex))
}

func renderOp(op protocol.Op) string {
	switch op.Kind {
	case repeat.PatchInsert:
		return fmt.Sprintf("insert %s at %d", renderItem(op.Item), op.To)
	case repeat.PatchRemove:
		return fmt.Sprintf("remove at %d", op.From)
	case repeat.PatchMove:
		return fmt.Sprintf("move %d to %d", op.From, op.To)
	case repeat.PatchUpdate:
		return fmt.Sprintf("update %s at %d", renderItem(op.Item), op.To)
	default:
		return op.Kind.String()
	}
}

func renderIndex(i int) string {
	if i < 0 {
		return "nil"
	}
	return strconv.Itoa(i)
}

func renderItem(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func checkFormat(format string) error {
	switch format {
	case config.FormatText, config.FormatJSON, config.FormatMsgpack, config.FormatBinary:
		return nil
	}
	return errors.New("E150").WithSource(format)
}
