package costcalc

import (
	"math"
	"strconv"
	"testing"
	"time"
)

func TestNormalizeNumberInput(t *testing.T) {
	if got := NormalizeNumberInput("10,5"); got != "10.5" {
		t.Errorf("expected 10.5, got %q", got)
	}
	if got := NormalizeNumberInput("abc"); got != "abc" {
		t.Errorf("non-numeric text must pass through, got %q", got)
	}
}

func TestCalculateWaste(t *testing.T) {
	testCases := []struct {
		name                 string
		brutto, netto, waste string
		target               WasteTarget
		want                 string
	}{
		{"netto from waste", "100", "", "15", TargetNetto, "85.000"},
		{"waste from netto", "100", "85", "", TargetWaste, "15.00"},
		{"comma decimals", "100,0", "", "15,5", TargetNetto, "84.500"},
		{"repeating fraction", "3", "2", "", TargetWaste, "33.33"},
		{"all empty", "", "", "", TargetNetto, ""},
		{"zero brutto", "0", "", "10", TargetNetto, ""},
		{"waste above 100", "100", "", "101", TargetNetto, ""},
		{"negative waste", "100", "", "-1", TargetNetto, ""},
		{"netto above brutto", "100", "120", "", TargetWaste, ""},
		{"zero netto", "100", "0", "", TargetWaste, ""},
		{"garbage", "abc", "", "10", TargetNetto, ""},
		{"unknown target", "100", "85", "15", WasteTarget("brutto"), ""},
		{"infinite brutto", "inf", "", "10", TargetNetto, ""},
		{"Infinity brutto", "Infinity", "50", "", TargetWaste, ""},
		{"NaN netto", "100", "nan", "", TargetWaste, ""},
		{"NaN waste", "100", "", "NaN", TargetNetto, ""},
		{"infinite netto", "100", "-Inf", "", TargetWaste, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateWaste(tc.brutto, tc.netto, tc.waste, tc.target)
			if got != tc.want {
				t.Errorf("CalculateWaste(%q, %q, %q, %s) = %q, want %q", tc.brutto, tc.netto, tc.waste, tc.target, got, tc.want)
			}
		})
	}
}

func TestWasteNettoInverse(t *testing.T) {
	bruttos := []float64{10, 100, 250.5, 1000}
	wastes := []float64{0, 5, 15, 33.3, 50, 99}

	for _, b := range bruttos {
		for _, w := range wastes {
			bs := strconv.FormatFloat(b, 'f', -1, 64)
			ws := strconv.FormatFloat(w, 'f', -1, 64)

			netto := CalculateWaste(bs, "", ws, TargetNetto)
			if netto == "" {
				t.Fatalf("brutto=%v waste=%v: empty netto", b, w)
			}
			back := CalculateWaste(bs, netto, "", TargetWaste)
			if w == 0 {
				// netto == brutto is valid and yields zero waste
				if back != "0.00" {
					t.Errorf("brutto=%v: expected 0.00, got %q", b, back)
				}
				continue
			}
			got, err := strconv.ParseFloat(back, 64)
			if err != nil {
				t.Fatalf("brutto=%v waste=%v: %q is not a number", b, w, back)
			}
			if math.Abs(got-w) > 0.01 {
				t.Errorf("brutto=%v waste=%v: round trip gave %v", b, w, got)
			}
		}
	}
}

func TestYieldPercent(t *testing.T) {
	testCases := []struct {
		name          string
		brutto, netto float64
		want          float64
	}{
		{"regular", 100, 85, 85},
		{"zero brutto", 0, 85, 0},
		{"infinite brutto", math.Inf(1), 85, 0},
		{"infinite netto", 100, math.Inf(1), 0},
		{"NaN netto", 100, math.NaN(), 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := YieldPercent(tc.brutto, tc.netto); got != tc.want {
				t.Errorf("YieldPercent(%v, %v) = %v, want %v", tc.brutto, tc.netto, got, tc.want)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	testCases := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{-12.5, true},
		{math.MaxFloat64, true},
		{math.Inf(1), false},
		{math.Inf(-1), false},
		{math.NaN(), false},
	}
	for _, tc := range testCases {
		if got := IsFinite(tc.v); got != tc.want {
			t.Errorf("IsFinite(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestFormatVolumeDisplay(t *testing.T) {
	testCases := []struct {
		value float64
		unit  string
		want  string
	}{
		{1500, "ml", "1.500 л"},
		{500, "ml", "500.000"},
		{0.5, "l", "500.000 мл"},
		{2, "l", "2.000"},
		{1000, "ml", "1.000 л"},
		{250, "g", "250.000"},
	}
	for _, tc := range testCases {
		if got := FormatVolumeDisplay(tc.value, tc.unit); got != tc.want {
			t.Errorf("FormatVolumeDisplay(%v, %q) = %q, want %q", tc.value, tc.unit, got, tc.want)
		}
	}
}

func TestExpiryDateFrom(t *testing.T) {
	now := time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)
	if got := ExpiryDateFrom(now, 3); got != "02.02.2026" {
		t.Errorf("expected 02.02.2026, got %q", got)
	}
	if got := ExpiryDateFrom(now, 0); got != NoExpiry {
		t.Errorf("expected sentinel, got %q", got)
	}
	if got := ExpiryDateFrom(now, -4); got != NoExpiry {
		t.Errorf("expected sentinel, got %q", got)
	}
}
