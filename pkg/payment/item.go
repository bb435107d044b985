package payment

import "github.com/jwebster45206/vehicle-vendor/pkg/host"

// ItemProvider charges in stacks of one item type from the player's main inventory.
type ItemProvider struct {
	item string
	inv  host.Inventory
}

// Ensure ItemProvider implements Provider
var _ Provider = (*ItemProvider)(nil)

func NewItemProvider(item string, inv host.Inventory) *ItemProvider {
	return &ItemProvider{item: item, inv: inv}
}

// Item returns the item short name this provider charges in.
func (p *ItemProvider) Item() string { return p.item }

func (p *ItemProvider) Available() bool { return true }

func (p *ItemProvider) Balance(id host.PlayerID) int {
	return p.inv.ItemAmount(id, p.item)
}

func (p *ItemProvider) Debit(id host.PlayerID, amount int) {
	if amount <= 0 || p.Balance(id) < amount {
		return
	}
	p.inv.TakeItem(id, p.item, amount)
}
