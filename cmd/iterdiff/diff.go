package main

import (
	"fmt"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/middleware"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/snapshot"
	"github.com/spf13/cobra"
)

func (a *app) diffCmd() *cobra.Command {
	var (
		track  trackFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "diff <snapshot> <snapshot> [snapshot...]",
		Short: "Diff successive snapshots",
		Long: `Diff each snapshot against the one before it and print the changes.

Snapshots are JSON arrays. Items are matched by their JSON content unless
a track-by strategy is given.

Examples:
  iterdiff diff before.json after.json
  iterdiff diff --track-by=id s3://bucket/v1.json s3://bucket/v2.json
  cat next.json | iterdiff diff prev.json - --output=json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("E151").WithSuggestion("Pass at least two snapshots")
			}
			if format == "" {
				format = a.cfg.Output.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			return a.runDiff(cmd, args, track, format)
		},
	}

	track.register(cmd)
	cmd.Flags().StringVarP(&format, "output", "o", "", "Output format: text, json, msgpack, binary (default from iterdiff.json)")

	return cmd
}

func (a *app) runDiff(cmd *cobra.Command, uris []string, track trackFlags, format string) error {
	spec, err := a.spec(&track)
	if err != nil {
		return err
	}
	opts, done, err := spec.Options(a.logger)
	if err != nil {
		return errors.New("E104").Wrap(err)
	}
	defer done()

	d := differ.New(append(opts, differ.WithObserver(middleware.Logging(a.logger)))...)
	out := cmd.OutOrStdout()

	for i, uri := range uris {
		src, err := snapshot.Open(uri, a.snapshotOptions())
		if err != nil {
			return errors.New("E102").WithSource(uri).Wrap(err)
		}
		items, err := src.Load(cmd.Context())
		if err != nil {
			return loadError(src.String(), err)
		}
		if _, err := d.Check(items); err != nil {
			return errors.Classify(err).WithSource(uri)
		}
		if i == 0 {
			continue
		}

		r := protocol.NewReport(d)
		r.Seq = uint64(i)
		label := fmt.Sprintf("%s -> %s", uris[i-1], uri)
		if err := writeReport(out, format, label, r); err != nil {
			return err
		}
	}
	return nil
}

// loadError codes a snapshot load failure by where it came from.
func loadError(source string, err error) error {
	e := errors.Classify(err)
	if e.Code == "E001" {
		if len(source) > 5 && source[:5] == "s3://" {
			e = errors.New("E201").Wrap(err)
		} else {
			e = errors.New("E102").Wrap(err)
		}
	}
	return e.WithSource(source)
}
