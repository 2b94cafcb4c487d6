package refdata

import "time"

// AircraftCategory groups type codes for turnaround and crew rules.
type AircraftCategory string

const (
	NarrowBody AircraftCategory = "narrow_body"
	WideBody   AircraftCategory = "wide_body"
	Regional   AircraftCategory = "regional"
)

var categoryByType = map[string]AircraftCategory{
	"319": NarrowBody, "320": NarrowBody, "321": NarrowBody,
	"733": NarrowBody, "737": NarrowBody, "738": NarrowBody, "739": NarrowBody,
	"330": WideBody, "333": WideBody, "359": WideBody,
	"763": WideBody, "764": WideBody, "772": WideBody, "773": WideBody,
	"787": WideBody, "788": WideBody, "789": WideBody,
	"E90": Regional, "E95": Regional, "CR7": Regional, "CR9": Regional, "DH4": Regional,
}

// CategoryOf maps an IATA type code to its category. Unknown types are
// treated as narrow-body.
func CategoryOf(typeCode string) AircraftCategory {
	if c, ok := categoryByType[typeCode]; ok {
		return c
	}
	return NarrowBody
}

// MinTurnaround is the type-specific minimum ground time between landing
// and the next departure on the same tail.
func MinTurnaround(typeCode string) time.Duration {
	switch CategoryOf(typeCode) {
	case WideBody:
		return 90 * time.Minute
	case Regional:
		return 30 * time.Minute
	default:
		return 45 * time.Minute
	}
}

// rangeNM holds still-air range by type code, nautical miles.
var rangeNM = map[string]float64{
	"319": 3750, "320": 3300, "321": 3200,
	"733": 3000, "737": 3000, "738": 3100, "739": 3300,
	"330": 6350, "333": 6350, "359": 8100,
	"763": 6385, "764": 6385, "772": 7730, "773": 7370,
	"787": 7355, "788": 7355, "789": 7635,
	"E90": 2300, "E95": 2300, "CR7": 2000, "CR9": 2400, "DH4": 1200,
}

// RangeNM returns the aircraft range for a type code; unknown types get
// a conservative 3000nm.
func RangeNM(typeCode string) float64 {
	if r, ok := rangeNM[typeCode]; ok {
		return r
	}
	return 3000
}

// CrewComplement returns the minimum pilots and cabin crew for a
// category.
func CrewComplement(cat AircraftCategory) (pilots, cabin int) {
	switch cat {
	case WideBody:
		return 2, 6
	case Regional:
		return 2, 2
	default:
		return 2, 3
	}
}

// FDPLimit returns the maximum flight-duty period for a day with the
// given sector count (FAA/EASA style table: 13h at 1-2 sectors stepping
// down to 10h at 7+).
func FDPLimit(sectors int) time.Duration {
	switch {
	case sectors <= 2:
		return 13 * time.Hour
	case sectors == 3:
		return 12*time.Hour + 30*time.Minute
	case sectors == 4:
		return 12 * time.Hour
	case sectors == 5:
		return 11*time.Hour + 30*time.Minute
	case sectors == 6:
		return 11 * time.Hour
	default:
		return 10 * time.Hour
	}
}

// Crew rest and block-hour limits.
const (
	MinRest         = 12 * time.Hour
	MinRestReduced  = 10 * time.Hour
	MaxMonthlyHours = 100.0
	MaxYearlyHours  = 1000.0
)

// Connection types for MCT lookup.
const (
	ConnDomDom = "domestic_domestic"
	ConnDomInt = "domestic_international"
	ConnIntDom = "international_domestic"
	ConnIntInt = "international_international"
)

// defaultMCT holds base minimum connect times when no airport-specific
// table entry exists.
var defaultMCT = map[string]time.Duration{
	ConnDomDom: 45 * time.Minute,
	ConnDomInt: 75 * time.Minute,
	ConnIntDom: 90 * time.Minute,
	ConnIntInt: 60 * time.Minute,
}

// MCT add-ons applied on top of the base value when the connection
// crosses terminals, airlines, or requires a baggage recheck.
const (
	AddOnTerminalChange = 20 * time.Minute
	AddOnInterline      = 15 * time.Minute
	AddOnBaggageRecheck = 30 * time.Minute
)

// DefaultMCT returns the base MCT for a connection type.
func DefaultMCT(connection string) time.Duration {
	if d, ok := defaultMCT[connection]; ok {
		return d
	}
	return defaultMCT[ConnDomDom]
}

// strictCabotage lists countries that bar foreign carriers from domestic
// segments.
var strictCabotage = map[string]bool{
	"US": true, "CA": true, "AU": true, "NZ": true, "BR": true, "AR": true,
	"CL": true, "CN": true, "IN": true, "RU": true, "GB": true, "FR": true,
	"DE": true, "IT": true, "ES": true, "JP": true, "KR": true,
}

// StrictCabotage reports whether a country bars foreign domestic
// operations.
func StrictCabotage(country string) bool { return strictCabotage[country] }

// euEEA lists the open-skies area: intra-area routes need no bilateral
// rights for area carriers.
var euEEA = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LV": true, "LT": true, "LU": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SK": true,
	"SI": true, "ES": true, "SE": true, "IS": true, "LI": true, "NO": true,
}

// OpenSkiesArea reports whether both countries sit inside the EU/EEA
// open-skies area.
func OpenSkiesArea(a, b string) bool { return euEEA[a] && euEEA[b] }
