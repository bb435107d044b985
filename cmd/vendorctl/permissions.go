package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/settings"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "List every permission the settings register",
	Long: `Print the permissions the plugin registers for the current settings file:
ownership, purchase, free and one per price tier.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settings.Load(settingsPath, log)

		h := host.NewMemory(time.Now())
		p := vendor.New(h, settings.NewStore(s), log)
		p.Init()

		out := cmd.OutOrStdout()
		for _, perm := range h.Registered {
			fmt.Fprintln(out, perm)
		}
		return nil
	},
}
