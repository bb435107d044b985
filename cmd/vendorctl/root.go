package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/vehicle-vendor/internal/config"
	"github.com/jwebster45206/vehicle-vendor/internal/logger"
)

var (
	settingsPath string
	verbose      bool
	log          *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vendorctl",
	Short: "Manage vehicle vendor settings",
	Long: `vendorctl inspects and maintains the vehicle vendor settings file.

Examples:
  vendorctl validate
  vendorctl migrate --settings ./data/VehicleVendorOptions.json
  vendorctl permissions`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		log = logger.Setup(cfg)
		if !cmd.Flags().Changed("settings") {
			settingsPath = cfg.SettingsPath
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "", "settings file (default from SETTINGS_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(permissionsCmd)
}
