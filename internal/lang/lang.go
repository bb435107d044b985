// Package lang holds the player-facing messages and their translations.
package lang

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	NoPermission      = "Error.NoPermission"
	InsufficientFunds = "Error.InsufficientFunds"
	PurchaseFailed    = "Error.PurchaseFailed"
	CurrencyEconomics = "Currency.Economics"
	CurrencyRewards   = "Currency.ServerRewards"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		NoPermission:      "You don't have permission to buy the %s.",
		InsufficientFunds: "You can't afford the %s. It costs %d %s.",
		PurchaseFailed:    "That purchase could not be completed. You have not been charged.",
		CurrencyEconomics: "coins",
		CurrencyRewards:   "reward points",
	},
	language.Spanish: {
		NoPermission:      "No tienes permiso para comprar el %s.",
		InsufficientFunds: "No puedes pagar el %s. Cuesta %d %s.",
		PurchaseFailed:    "No se pudo completar la compra. No se te ha cobrado nada.",
		CurrencyEconomics: "monedas",
		CurrencyRewards:   "puntos de recompensa",
	},
}

// Catalog resolves message keys for a player's language.
type Catalog struct {
	cat     *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
}

// NewCatalog builds the catalog with every bundled translation. English is the fallback.
func NewCatalog() *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := []language.Tag{language.English}
	for tag, msgs := range translations {
		for key, msg := range msgs {
			// SetString only fails for malformed tags, which cannot happen with the constants above.
			_ = b.SetString(tag, key, msg)
		}
		if tag != language.English {
			tags = append(tags, tag)
		}
	}
	return &Catalog{cat: b, tags: tags, matcher: language.NewMatcher(tags)}
}

func (c *Catalog) tag(lang string) language.Tag {
	_, i, _ := c.matcher.Match(language.Make(lang))
	return c.tags[i]
}

// Get formats the message key in the given language.
func (c *Catalog) Get(lang, key string, args ...any) string {
	p := message.NewPrinter(c.tag(lang), message.Catalog(c.cat))
	return p.Sprintf(key, args...)
}

// CurrencyName returns a display name for a currency selector.
func (c *Catalog) CurrencyName(lang, currency string) string {
	switch currency {
	case "economics":
		return c.Get(lang, CurrencyEconomics)
	case "serverrewards":
		return c.Get(lang, CurrencyRewards)
	}
	return cases.Title(c.tag(lang)).String(strings.ReplaceAll(currency, ".", " "))
}
