package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/config"
	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/snapshot"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/trackby"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries state shared by all commands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	stdin  io.Reader
}

func main() {
	a := &app{stdin: os.Stdin}
	root := a.rootCmd()
	if err := root.Execute(); err != nil {
		errors.SetColors(!a.noColor && errors.ColorsFor(os.Stderr))
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "iterdiff",
		Short: "Change detection for ordered collections",
		Long: `iterdiff compares successive snapshots of a list and reports
which items were added, removed, moved or changed identity, along with
the ordered operations that turn one snapshot into the next.

Snapshots are JSON arrays read from files, stdin ("-") or S3
(s3://bucket/key).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to iterdiff.json (default: nearest in working directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		a.diffCmd(),
		a.replayCmd(),
		a.serveCmd(),
		a.benchCmd(),
		a.initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// setup loads configuration and builds the logger. Flags override file
// values.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.Log.Format = a.logFormat
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: a.cfg.LogLevel()}
	var handler slog.Handler
	if a.cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	}
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)
	return nil
}

// trackFlags are the track-by flags shared by diff, replay and bench.
type trackFlags struct {
	field string
	lua   string
	index bool
}

func (f *trackFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.field, "track-by", "", "Track items by a JSON field path (gjson syntax)")
	cmd.Flags().StringVar(&f.lua, "track-by-lua", "", "Track items by a Lua function body over (index, item)")
	cmd.Flags().BoolVar(&f.index, "track-by-index", false, "Track items by position")
}

// spec merges the flags over the configured strategy.
func (a *app) spec(f *trackFlags) (trackby.Spec, error) {
	s := trackby.Spec{Field: a.cfg.TrackBy.Field, Lua: a.cfg.TrackBy.Lua, Index: a.cfg.TrackBy.Index}
	if f.field != "" || f.lua != "" || f.index {
		s = trackby.Spec{Field: f.field, Lua: f.lua, Index: f.index}
	}
	if err := s.Validate(); err != nil {
		return s, errors.New("E120").Wrap(err).WithDetail("Use only one of --track-by, --track-by-lua and --track-by-index.")
	}
	return s, nil
}

func (a *app) snapshotOptions() snapshot.Options {
	return snapshot.Options{
		Raw:      true,
		Stdin:    a.stdin,
		Region:   a.cfg.S3.Region,
		Endpoint: a.cfg.S3.Endpoint,
	}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
