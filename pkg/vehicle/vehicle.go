package vehicle

import "time"

// Type is a sellable vehicle kind. Its string form is used in settings keys and permission names.
type Type string

const (
	Minicopter     Type = "minicopter"
	ScrapTransport Type = "scraptransport"
	Rowboat        Type = "rowboat"
	RHIB           Type = "rhib"
	SoloSub        Type = "solosub"
	DuoSub         Type = "duosub"
)

// HostDespawnProtection is the protection window the host applies to every vendor vehicle.
const HostDespawnProtection = 300 * time.Second

// Info holds the host facts about a vehicle type: how the vendor dialogue names its purchase
// action and which prefabs it spawns.
type Info struct {
	Type        Type
	SettingsKey string // key under "Vehicles" in the settings file
	DisplayName string
	BuyAction   string
	Prefabs     []string
}

// catalog is in declaration order. Gate, commit and preview interceptors follow this order.
var catalog = []Info{
	{
		Type:        Minicopter,
		SettingsKey: "Minicopter",
		DisplayName: "Minicopter",
		BuyAction:   "buyminicopter",
		Prefabs:     []string{"assets/content/vehicles/minicopter/minicopter.entity.prefab"},
	},
	{
		Type:        ScrapTransport,
		SettingsKey: "ScrapTransport",
		DisplayName: "Scrap Transport Helicopter",
		BuyAction:   "buytransport",
		Prefabs:     []string{"assets/content/vehicles/scrap heli carrier/scraptransporthelicopter.prefab"},
	},
	{
		Type:        Rowboat,
		SettingsKey: "Rowboat",
		DisplayName: "Rowboat",
		BuyAction:   "buyboat",
		Prefabs:     []string{"assets/content/vehicles/boats/rowboat/rowboat.prefab"},
	},
	{
		Type:        RHIB,
		SettingsKey: "RHIB",
		DisplayName: "RHIB",
		BuyAction:   "buyrhib",
		Prefabs:     []string{"assets/content/vehicles/boats/rhib/rhib.prefab"},
	},
	{
		Type:        SoloSub,
		SettingsKey: "SoloSub",
		DisplayName: "Solo Submarine",
		BuyAction:   "buysubmarinesolo",
		Prefabs:     []string{"assets/content/vehicles/submarine/submarinesolo.entity.prefab"},
	},
	{
		Type:        DuoSub,
		SettingsKey: "DuoSub",
		DisplayName: "Duo Submarine",
		BuyAction:   "buysubmarineduo",
		Prefabs:     []string{"assets/content/vehicles/submarine/submarineduo.entity.prefab"},
	},
}

// All returns every vehicle type in declaration order.
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the host facts for a type.
func Lookup(t Type) (Info, bool) {
	for _, info := range catalog {
		if info.Type == t {
			return info, true
		}
	}
	return Info{}, false
}

// ForPrefab maps a spawned entity's prefab to its vehicle type.
func ForPrefab(prefab string) (Info, bool) {
	for _, info := range catalog {
		for _, p := range info.Prefabs {
			if p == prefab {
				return info, true
			}
		}
	}
	return Info{}, false
}
