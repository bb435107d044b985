package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
)

// pluginCallTimeout bounds a single ledger call made from a plugin method
const pluginCallTimeout = 2 * time.Second

// EconomyPlugin exposes a Ledger through the call-by-name interface economy plugins
// offer other plugins. Methods follow either the Economics or the ServerRewards naming.
type EconomyPlugin struct {
	ledger  *Ledger
	methods EconomyMethods
	logger  *slog.Logger
}

// EconomyMethods names the methods an economy plugin answers to
type EconomyMethods struct {
	Balance  string
	Withdraw string
	Deposit  string
	Points   bool // balances are whole points rather than floating point coins
}

var (
	EconomicsMethods     = EconomyMethods{Balance: "Balance", Withdraw: "Withdraw", Deposit: "Deposit"}
	ServerRewardsMethods = EconomyMethods{Balance: "CheckPoints", Withdraw: "TakePoints", Deposit: "AddPoints", Points: true}
)

// Ensure EconomyPlugin implements host.Plugin
var _ host.Plugin = (*EconomyPlugin)(nil)

func NewEconomyPlugin(ledger *Ledger, methods EconomyMethods, log *slog.Logger) *EconomyPlugin {
	return &EconomyPlugin{ledger: ledger, methods: methods, logger: logger.OrDiscard(log)}
}

// Call dispatches a plugin method. Unknown methods and malformed arguments return nil,
// the way a missing hook does.
func (p *EconomyPlugin) Call(method string, args ...any) any {
	if len(args) == 0 {
		return nil
	}
	playerID, ok := args[0].(string)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pluginCallTimeout)
	defer cancel()

	switch method {
	case p.methods.Balance:
		balance, err := p.ledger.Balance(ctx, playerID)
		if err != nil {
			p.logger.Error("Economy balance failed", "method", method, "player", playerID, "error", err)
			balance = 0
		}
		if p.methods.Points {
			return int(math.Floor(balance))
		}
		return balance

	case p.methods.Withdraw:
		amount, ok := amountArg(args)
		if !ok {
			return false
		}
		done, err := p.ledger.Withdraw(ctx, playerID, amount)
		if err != nil {
			p.logger.Error("Economy withdraw failed", "method", method, "player", playerID, "error", err)
			return false
		}
		return done

	case p.methods.Deposit:
		amount, ok := amountArg(args)
		if !ok {
			return false
		}
		if err := p.ledger.Deposit(ctx, playerID, amount); err != nil {
			p.logger.Error("Economy deposit failed", "method", method, "player", playerID, "error", err)
			return false
		}
		return true
	}
	return nil
}

func amountArg(args []any) (float64, bool) {
	if len(args) < 2 {
		return 0, false
	}
	switch n := args[1].(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
