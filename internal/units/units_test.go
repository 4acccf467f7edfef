package units

import (
	"math"
	"testing"
)

func TestConvertLength(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		from     string
		to       string
		expected float64
	}{
		{"strip pitch m to mm", 1.409 / 26, M, MM, 54.1923},
		{"1 in to cm", 1, IN, CM, 2.54},
		{"1 ft to in", 1, FT, IN, 12},
		{"same unit", 3.5, MM, MM, 3.5},
		{"unknown units default to m", 2, "furlong", CM, 200},
		{"zero", 0, FT, MM, 0},
		{"negative z offset", -0.01, M, MM, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertLength(tt.value, tt.from, tt.to)
			if math.Abs(result-tt.expected) > 1e-3 {
				t.Errorf("ConvertLength(%f, %s, %s) = %f, want %f", tt.value, tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid m", M, true},
		{"valid cm", CM, true},
		{"valid mm", MM, true},
		{"valid in", IN, true},
		{"valid ft", FT, true},
		{"invalid unit", "yd", false},
		{"empty string", "", false},
		{"case sensitive", "MM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "m, cm, mm, in, ft" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
	for _, u := range ValidUnits {
		if math.Abs(ToMeters(FromMeters(1, u), u)-1) > 1e-12 {
			t.Errorf("round trip through %s drifted", u)
		}
	}
}
