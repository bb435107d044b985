package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/vehicle-vendor/pkg/settings"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a settings file without changing it",
	Long: `Decode the settings file and check every vehicle and price tier.

With --strict, keys the plugin does not know about are errors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := &SettingsValidator{}
		if err := v.validateFile(settingsPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", settingsPath)
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "reject unknown keys")
}

type SettingsValidator struct {
	errors []string
}

func (v *SettingsValidator) validateFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var s settings.Settings
	decoder := json.NewDecoder(bytes.NewReader(data))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&s); err != nil {
		return fmt.Errorf("file %s failed to decode: %w", filename, err)
	}

	for _, err := range s.Validate() {
		v.addError(err.Error())
	}
	v.validateCoverage(&s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// validateCoverage flags vehicles that would be filled in from defaults on load.
func (v *SettingsValidator) validateCoverage(s *settings.Settings) {
	for _, info := range vehicle.All() {
		if _, ok := s.Vehicles[info.SettingsKey]; !ok {
			v.addError(fmt.Sprintf("Vehicles.%s is missing; run migrate to add defaults", info.SettingsKey))
		}
	}
}

func (v *SettingsValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
