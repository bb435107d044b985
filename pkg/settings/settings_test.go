package settings

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readRaw(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	configs := s.Configs()
	assert.Len(t, configs, len(vehicle.All()))
	assert.Equal(t, 100, configs[vehicle.Minicopter].FuelAmount)
	assert.Equal(t, 50, configs[vehicle.Rowboat].FuelAmount)
	assert.Equal(t, 300.0, configs[vehicle.RHIB].DespawnProtectionSeconds)
	assert.NotNil(t, configs[vehicle.DuoSub].PricesRequiringPermission)
	assert.Empty(t, s.Validate())
}

func TestLoadFile_CreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	s, res, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, Defaults(), s)

	_, res, err = LoadFile(path)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.False(t, res.Migrated, "freshly written defaults need no migration")
}

func TestLoadFile_MigratesOutdated(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `{
		"Vehicles": {
			"Minicopter": {"FuelAmount": 10, "PricesRequiringPermission": [{"Amount": 20, "Currency": "economics"}]},
			"Rowboat": {"FuelAmount": -1}
		},
		"Comment": "operator note"
	}`)

	s, res, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, res.Migrated)

	configs := s.Configs()
	assert.Equal(t, 10, configs[vehicle.Minicopter].FuelAmount)
	assert.Equal(t, []vehicle.PriceTier{{Amount: 20, Currency: vehicle.CurrencyEconomics}},
		configs[vehicle.Minicopter].PricesRequiringPermission)
	assert.Equal(t, 300.0, configs[vehicle.Minicopter].DespawnProtectionSeconds, "missing field defaulted")
	assert.Equal(t, -1, configs[vehicle.Rowboat].FuelAmount)
	assert.Equal(t, 50, configs[vehicle.RHIB].FuelAmount, "missing vehicle defaulted")

	raw := readRaw(t, path)
	assert.Equal(t, "operator note", raw["Comment"], "unknown keys are preserved on save")

	_, res, err = LoadFile(path)
	require.NoError(t, err)
	assert.False(t, res.Migrated, "migration is idempotent")
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":   `{"Vehicles": `,
		"null":       `null`,
		"bad values": `{"Vehicles": {"Minicopter": {"PricesRequiringPermission": [{"Amount": "ten"}]}}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, content)

			_, _, err := LoadFile(path)
			assert.ErrorIs(t, err, ErrInvalid)

			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, content, string(data), "invalid file is left untouched")
		})
	}
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `garbage`)

	s := Load(path, testLogger())
	assert.Equal(t, Defaults(), s)
}

func TestValidate(t *testing.T) {
	s := Defaults()
	s.Vehicles["Kayak"] = vehicle.Config{}
	mini := s.Vehicles["Minicopter"]
	mini.FuelAmount = -5
	mini.PricesRequiringPermission = []vehicle.PriceTier{
		{Amount: -1, Currency: "scrap"},
		{Amount: 10},
		{Amount: 0},
	}
	s.Vehicles["Minicopter"] = mini

	errs := s.Validate()
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0].Error(), "Vehicles.Kayak")
	assert.Contains(t, errs[1].Error(), "FuelAmount")
	assert.Contains(t, errs[2].Error(), "[0].Amount")
	assert.Contains(t, errs[3].Error(), "[1].Currency")
}

func TestStore_Swap(t *testing.T) {
	first := Defaults()
	st := NewStore(first)
	assert.Same(t, first, st.Load())

	second := Defaults()
	prev := st.Swap(second)
	assert.Same(t, first, prev)
	assert.Same(t, second, st.Load())
}
