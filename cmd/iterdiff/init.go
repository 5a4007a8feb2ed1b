package main

import (
	"path/filepath"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/config"
	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/spf13/cobra"
)

func (a *app) initCmd() *cobra.Command {
	var (
		force bool
		track trackFlags
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default iterdiff.json",
		Args:  cobra.MaximumNArgs(1),
		// init must work where the current config is broken.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return errors.New("E143").
					WithSource(filepath.Join(dir, config.ConfigFileName)).
					WithSuggestion("Pass --force to overwrite it")
			}

			cfg := config.New()
			cfg.TrackBy = config.TrackByConfig{Field: track.field, Lua: track.lua, Index: track.index}
			if err := cfg.Validate(); err != nil {
				return err
			}
			path := filepath.Join(dir, config.ConfigFileName)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing iterdiff.json")
	track.register(cmd)
	return cmd
}
