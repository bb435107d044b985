// Package illusion presents temporary host currency balances so the host's own scrap checks
// agree with a custom price.
//
// Two kinds of adjustment exist. A PassThrough grant is authoritative for exactly one purchase
// and is always paired with a compensating debit or a rollback. A preview is display-only: the
// client is sent a doctored snapshot and the true inventory is resent after PreviewRefreshDelay.
package illusion

import (
	"log/slog"
	"time"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/payment"
)

// PreviewRefreshDelay is how long a doctored client snapshot lives before the true
// inventory is resent. The client evaluates vendor conditions once, when it renders the
// speech node, so the snapshot only has to outlive that render.
const PreviewRefreshDelay = time.Second

// Collaborators is the subset of the host the engine uses.
type Collaborators interface {
	host.Inventory
	host.ClientSync
	host.Players
	host.Scheduler
}

// Engine applies balance illusions in the host currency.
type Engine struct {
	host   Collaborators
	item   string
	logger *slog.Logger
}

func NewEngine(h Collaborators, log *slog.Logger) *Engine {
	return &Engine{host: h, item: host.ScrapItem, logger: logger.OrDiscard(log)}
}

// HostBalance returns the player's authoritative host currency balance.
func (e *Engine) HostBalance(id host.PlayerID) int {
	return e.host.ItemAmount(id, e.item)
}

// PassThrough is a temporary host currency credit that must end in Settle or Rollback.
type PassThrough struct {
	engine *Engine
	player host.PlayerID
	amount int
	closed bool
}

// Grant credits the player with amount host currency so the host's own deduction can succeed.
func (e *Engine) Grant(id host.PlayerID, amount int) *PassThrough {
	e.host.GiveItem(id, e.item, amount)
	return &PassThrough{engine: e, player: id, amount: amount}
}

// Amount is the credited amount.
func (p *PassThrough) Amount() int { return p.amount }

// Rollback takes the credit back. It is a no-op once the grant is closed.
func (p *PassThrough) Rollback() {
	if p.closed {
		return
	}
	p.closed = true
	taken := p.engine.host.TakeItem(p.player, p.engine.item, p.amount)
	if taken != p.amount && p.engine.logger != nil {
		p.engine.logger.Error("Pass-through rollback removed less than granted",
			"player", p.player,
			"granted", p.amount,
			"removed", taken)
	}
}

// BalanceAfterSettle returns the host currency balance the host will check once Settle has
// charged amount through provider. It differs from HostBalance only when the provider
// charges in the host currency itself.
func (p *PassThrough) BalanceAfterSettle(provider payment.Provider, amount int) int {
	balance := p.engine.HostBalance(p.player)
	if items, ok := provider.(*payment.ItemProvider); ok && items.Item() == p.engine.item && amount > 0 {
		balance -= amount
	}
	return balance
}

// Settle charges the real price through the tier's provider. The host's deduction of the
// credited amount completes the compensation.
func (p *PassThrough) Settle(provider payment.Provider, amount int) {
	if p.closed {
		return
	}
	p.closed = true
	if provider != nil && amount > 0 {
		provider.Debit(p.player, amount)
	}
}

// PreviewDelta computes the signed change to a displayed balance of actual that makes a
// threshold check agree with affordable. ok is false when no change is needed or none
// can produce the wanted result.
func PreviewDelta(actual, threshold int, affordable bool) (delta int, ok bool) {
	if (actual >= threshold) == affordable {
		return 0, false
	}
	target := threshold
	if !affordable {
		target = threshold - 1
	}
	if target < 0 {
		return 0, false
	}
	return target - actual, true
}

// Preview sends the client a balance that makes the host's display threshold agree with
// the player's custom affordability, then schedules the true inventory to be resent.
// The authoritative inventory is never touched.
func (e *Engine) Preview(id host.PlayerID, threshold int, affordable bool) (int, bool) {
	actual := e.HostBalance(id)
	delta, ok := PreviewDelta(actual, threshold, affordable)
	if !ok {
		return 0, false
	}

	e.host.SendDisplaySnapshot(id, e.item, actual+delta)
	e.host.After(PreviewRefreshDelay, func() {
		if !e.host.IsConnected(id) {
			if e.logger != nil {
				e.logger.Debug("Skipping inventory refresh for disconnected player", "player", id)
			}
			return
		}
		e.host.Resync(id)
	})
	return delta, true
}
