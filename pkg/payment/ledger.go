package payment

import (
	"log/slog"
	"math"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
)

// LedgerSpec names the plugin and methods of an external economy service.
type LedgerSpec struct {
	Plugin        string
	BalanceMethod string
	DebitMethod   string
	FloatAmounts  bool // the plugin takes and returns floating point balances
}

var (
	// Economics keeps a floating point balance per player.
	Economics = LedgerSpec{
		Plugin:        "Economics",
		BalanceMethod: "Balance",
		DebitMethod:   "Withdraw",
		FloatAmounts:  true,
	}

	// ServerRewards keeps integer reward points per player.
	ServerRewards = LedgerSpec{
		Plugin:        "ServerRewards",
		BalanceMethod: "CheckPoints",
		DebitMethod:   "TakePoints",
	}
)

// LedgerProvider charges through an economy plugin reached by name.
// Availability is decided once at construction; a ledger loaded later is not picked up
// until the provider is rebuilt.
type LedgerProvider struct {
	spec      LedgerSpec
	plugins   host.Plugins
	logger    *slog.Logger
	available bool
}

// Ensure LedgerProvider implements Provider
var _ Provider = (*LedgerProvider)(nil)

func NewLedgerProvider(spec LedgerSpec, plugins host.Plugins, log *slog.Logger) *LedgerProvider {
	log = logger.OrDiscard(log)
	available := plugins != nil && plugins.IsLoaded(spec.Plugin)
	if !available {
		log.Warn("Economy plugin not loaded, price tiers using it are disabled", "plugin", spec.Plugin)
	}
	return &LedgerProvider{
		spec:      spec,
		plugins:   plugins,
		logger:    log,
		available: available,
	}
}

func (p *LedgerProvider) Spec() LedgerSpec { return p.spec }

func (p *LedgerProvider) Available() bool { return p.available }

func (p *LedgerProvider) Balance(id host.PlayerID) int {
	if !p.available {
		return 0
	}
	return toInt(p.plugins.Call(p.spec.Plugin, p.spec.BalanceMethod, string(id)))
}

func (p *LedgerProvider) Debit(id host.PlayerID, amount int) {
	if !p.available || amount <= 0 {
		return
	}
	var arg any = amount
	if p.spec.FloatAmounts {
		arg = float64(amount)
	}
	res := p.plugins.Call(p.spec.Plugin, p.spec.DebitMethod, string(id), arg)
	if ok, isBool := res.(bool); isBool && !ok {
		p.logger.Warn("Economy plugin refused debit",
			"plugin", p.spec.Plugin,
			"player", id,
			"amount", amount)
	}
}

// toInt converts a plugin return value to whole units, rounding fractional balances down.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(math.Floor(float64(n)))
	case float64:
		return int(math.Floor(n))
	default:
		return 0
	}
}
