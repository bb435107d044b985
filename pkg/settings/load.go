package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/configmerge"
)

// ErrInvalid is returned when the settings file cannot be decoded.
var ErrInvalid = errors.New("settings file is invalid")

// Result describes how a settings file was read.
type Result struct {
	Created  bool // the file did not exist and defaults were written
	Migrated bool // defaults were merged in and the file was rewritten
}

// LoadFile reads path, merges in missing defaults and writes the file back when it changed.
// A missing file is created from defaults. Decode failures wrap ErrInvalid and leave the
// file untouched.
func LoadFile(path string) (*Settings, Result, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		defaults := Defaults()
		if err := Save(path, defaults); err != nil {
			return defaults, Result{}, err
		}
		return defaults, Result{Created: true}, nil
	}
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Result{}, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if raw == nil {
		return nil, Result{}, fmt.Errorf("%w: %s: empty document", ErrInvalid, path)
	}

	defaults, err := configmerge.ToMap(Defaults())
	if err != nil {
		return nil, Result{}, err
	}
	changed := configmerge.Merge(defaults, raw)

	s, err := decode(raw)
	if err != nil {
		return nil, Result{}, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	if changed {
		if err := Save(path, raw); err != nil {
			return s, Result{}, err
		}
	}
	return s, Result{Migrated: changed}, nil
}

// Load is LoadFile for the running plugin: it never fails, falling back to defaults and
// warning the operator.
func Load(path string, log *slog.Logger) *Settings {
	log = logger.OrDiscard(log)
	s, res, err := LoadFile(path)
	switch {
	case errors.Is(err, ErrInvalid):
		log.Warn("Configuration file is invalid; using defaults", "path", path, "error", err)
		return Defaults()
	case err != nil && s == nil:
		log.Warn("Failed to read configuration; using defaults", "path", path, "error", err)
		return Defaults()
	case err != nil:
		log.Error("Failed to save configuration", "path", path, "error", err)
	case res.Created:
		log.Info("Configuration file not found; wrote defaults", "path", path)
	case res.Migrated:
		log.Warn("Configuration appears to be outdated; updating and saving", "path", path)
	}
	return s
}

func decode(raw map[string]any) (*Settings, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes v as indented JSON, replacing path atomically.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace settings %s: %w", path, err)
	}
	return nil
}
