package main

import (
	"fmt"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/repeat"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/snapshot"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/trackby"
	"github.com/spf13/cobra"
)

func (a *app) replayCmd() *cobra.Command {
	var (
		track  trackFlags
		format string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Verify that operations rebuild every snapshot",
		Long: `Replay reads a JSON array of snapshots, diffs each against the one
before it and applies the resulting operations to the previous snapshot.
It fails if any replay does not reproduce the next snapshot.

Examples:
  iterdiff replay history.json
  iterdiff replay --track-by=id --quiet history.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			return a.runReplay(cmd, args[0], track, format, quiet)
		},
	}

	track.register(cmd)
	cmd.Flags().StringVarP(&format, "output", "o", "", "Output format for each step: text, json, msgpack, binary")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the summary")

	return cmd
}

func (a *app) runReplay(cmd *cobra.Command, path string, track trackFlags, format string, quiet bool) error {
	spec, err := a.spec(&track)
	if err != nil {
		return err
	}
	opts, done, err := spec.Options(a.logger)
	if err != nil {
		return errors.New("E104").Wrap(err)
	}
	defer done()

	src, err := snapshot.Open(path, a.snapshotOptions())
	if err != nil {
		return errors.New("E102").WithSource(path).Wrap(err)
	}
	data, err := src.Read(cmd.Context())
	if err != nil {
		return loadError(src.String(), err)
	}
	steps, err := snapshot.DecodeSequence(data, true)
	if err != nil {
		return errors.New("E102").WithSource(path).Wrap(err)
	}
	if len(steps) < 2 {
		return errors.New("E151").WithSource(path)
	}

	d := differ.New(opts...)
	out := cmd.OutOrStdout()
	var prev []any
	ops := 0
	for i, items := range steps {
		if _, err := d.Check(items); err != nil {
			return errors.Classify(err).WithSource(fmt.Sprintf("%s[%d]", path, i))
		}
		if i > 0 {
			patches := repeat.Patches(d)
			ops += len(patches)
			got, err := repeat.ReplayItems(prev, patches)
			if err != nil {
				return errors.New("E001").WithSource(fmt.Sprintf("%s[%d]", path, i)).Wrap(err)
			}
			if !sameItems(got, items) {
				return errors.New("E001").
					WithSource(fmt.Sprintf("%s[%d]", path, i)).
					WithDetail(fmt.Sprintf("Replaying %d operations did not reproduce snapshot %d.", len(patches), i))
			}
			if !quiet {
				r := protocol.NewReport(d)
				r.Seq = uint64(i)
				if err := writeReport(out, format, fmt.Sprintf("step %d", i), r); err != nil {
					return err
				}
			}
		}
		prev = items
	}

	success(out, "Replayed %d steps (%d operations)", len(steps)-1, ops)
	return nil
}

func sameItems(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !trackby.EqualJSON(a[i], b[i]) {
			return false
		}
	}
	return true
}
