package vehicle

import (
	"strconv"
	"strings"
)

// PermissionPrefix namespaces every permission this plugin registers.
const PermissionPrefix = "vehiclevendoroptions"

const allVehicles = "allvehicles"

func permission(parts ...string) string {
	return PermissionPrefix + "." + strings.Join(parts, ".")
}

// OwnershipAllPermission assigns ownership of every vendor vehicle.
func OwnershipAllPermission() string { return permission("ownership", allVehicles) }

// OwnershipPermission assigns ownership of vendor vehicles of type t.
func OwnershipPermission(t Type) string { return permission("ownership", string(t)) }

// AllowAllPermission bypasses RequiresPermission for every type.
func AllowAllPermission() string { return permission("allow", allVehicles) }

// AllowPermission lets a player buy type t when it requires permission.
func AllowPermission(t Type) string { return permission("allow", string(t)) }

// FreeAllPermission makes every vehicle free.
func FreeAllPermission() string { return permission("free", allVehicles) }

// FreePermission makes type t free.
func FreePermission(t Type) string { return permission("free", string(t)) }

// TierPermission derives the permission that routes a player to a tier. Free tiers share
// the vehicle's free permission. An empty currency yields "".
func TierPermission(t Type, tier PriceTier) string {
	if tier.IsFree() {
		return FreePermission(t)
	}
	currency := tier.Currency.Normalize()
	if currency == "" || t == "" || tier.Amount < 0 {
		return ""
	}
	return permission("price", string(t), string(currency), strconv.Itoa(tier.Amount))
}
