// Package delivery maps a free-text shipping address to a delivery-charge
// zone. Classification is a substring match against known Dhaka-area names;
// anything unmatched ships at the outside-Dhaka rate.
package delivery

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Zone string

const (
	ZoneDhaka   Zone = "DHAKA"
	ZoneOutside Zone = "OUTSIDE"
)

var (
	ChargeDhaka   = decimal.NewFromInt(70)
	ChargeOutside = decimal.NewFromInt(130)
)

// dhakaAreas lists district and neighborhood names that place an address
// inside the Dhaka delivery zone.
var dhakaAreas = []string{
	"dhaka",
	"dhanmondi",
	"gulshan",
	"banani",
	"baridhara",
	"bashundhara",
	"uttara",
	"mirpur",
	"mohammadpur",
	"motijheel",
	"tejgaon",
	"badda",
	"rampura",
	"khilgaon",
	"malibagh",
	"moghbazar",
	"farmgate",
	"shyamoli",
	"kalabagan",
	"lalmatia",
	"jatrabari",
	"demra",
	"savar",
	"keraniganj",
	"tongi",
}

type Quote struct {
	Zone   Zone
	Charge decimal.Decimal
}

// Classify returns the delivery zone and charge for an address. An empty or
// unmatched address classifies as outside Dhaka, the higher-charge zone.
func Classify(address string) Quote {
	if IsDhaka(address) {
		return Quote{Zone: ZoneDhaka, Charge: ChargeDhaka}
	}
	return Quote{Zone: ZoneOutside, Charge: ChargeOutside}
}

// IsDhaka reports whether the address text mentions a Dhaka-area name.
func IsDhaka(address string) bool {
	addr := strings.ToLower(address)
	for _, area := range dhakaAreas {
		if strings.Contains(addr, area) {
			return true
		}
	}
	return false
}
