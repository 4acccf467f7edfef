// Package units provides shared constants and conversion for length units
package units

// Unit constants
const (
	M  = "m"
	CM = "cm"
	MM = "mm"
	IN = "in"
	FT = "ft"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{M, CM, MM, IN, FT}

var metersPer = map[string]float64{
	M:  1,
	CM: 0.01,
	MM: 0.001,
	IN: 0.0254,
	FT: 0.3048,
}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, cm, mm, in, ft"
}

// ToMeters converts a length in unit to meters. Unknown units are treated as meters.
func ToMeters(v float64, unit string) float64 {
	if k, ok := metersPer[unit]; ok {
		return v * k
	}
	return v
}

// FromMeters converts a length in meters to unit.
func FromMeters(v float64, unit string) float64 {
	if k, ok := metersPer[unit]; ok {
		return v / k
	}
	return v
}

// ConvertLength converts a length between units.
func ConvertLength(v float64, from, to string) float64 {
	if from == to {
		return v
	}
	return FromMeters(ToMeters(v, from), to)
}
