package vehicle

import (
	"strings"
	"time"
)

// Currency selects what a price tier is paid in. Values other than the two ledger
// selectors are item short names.
type Currency string

const (
	CurrencyScrap         Currency = "scrap"
	CurrencyEconomics     Currency = "economics"
	CurrencyServerRewards Currency = "serverrewards"
)

// IsLedger reports whether the currency is a virtual ledger rather than an item.
func (c Currency) IsLedger() bool {
	return c == CurrencyEconomics || c == CurrencyServerRewards
}

// Normalize lower-cases and trims the selector.
func (c Currency) Normalize() Currency {
	return Currency(strings.ToLower(strings.TrimSpace(string(c))))
}

// PriceTier is a permission-gated price for a vehicle type.
type PriceTier struct {
	Amount   int      `json:"Amount"`
	Currency Currency `json:"Currency"`
}

// IsFree reports whether the tier costs nothing.
func (p PriceTier) IsFree() bool {
	return p.Amount == 0
}

// FreeTier is the canonical tier for players holding a free permission.
var FreeTier = PriceTier{Amount: 0, Currency: CurrencyScrap}

// Config is the operator settings for one vehicle type.
type Config struct {
	FuelAmount                int         `json:"FuelAmount"`               // -1 fills to capacity
	DespawnProtectionSeconds  float64     `json:"DespawnProtectionSeconds"` // negative keeps the host default
	RequiresPermission        bool        `json:"RequiresPermission"`
	PricesRequiringPermission []PriceTier `json:"PricesRequiringPermission"` // last permitted tier wins
}

// DespawnProtection returns the configured window and whether it is set.
func (c Config) DespawnProtection() (time.Duration, bool) {
	if c.DespawnProtectionSeconds < 0 {
		return 0, false
	}
	return time.Duration(c.DespawnProtectionSeconds * float64(time.Second)), true
}
