package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/vehicle-vendor/pkg/settings"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Add missing defaults to the settings file",
	Long: `Merge compiled-in defaults into the settings file and save it.

Values already present are kept, as are keys the plugin does not know about.
A missing file is created from defaults. An invalid file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, res, err := settings.LoadFile(settingsPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case res.Created:
			fmt.Fprintf(out, "Wrote default settings to %s\n", settingsPath)
		case res.Migrated:
			fmt.Fprintf(out, "Updated %s with missing defaults\n", settingsPath)
		default:
			fmt.Fprintf(out, "%s is up to date\n", settingsPath)
		}
		return nil
	},
}
