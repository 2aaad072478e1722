// Package costcalc holds the brutto/netto/waste reconciliation rules and the
// unit-aware cost arithmetic used by ingredient batches and recipes.
//
// Prices are always quoted per canonical unit: per kilogram for mass, per
// liter for volume and per piece for counted goods. Quantities stored in grams
// or milliliters are scaled by 1000 before any price multiplication.
package costcalc

import "strings"

type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "pcs"
)

type Family string

const (
	FamilyMass   Family = "mass"
	FamilyVolume Family = "volume"
	FamilyCount  Family = "count"
)

var unitAliases = map[string]Unit{
	"g":   UnitGram,
	"gr":  UnitGram,
	"г":   UnitGram,
	"kg":  UnitKilogram,
	"кг":  UnitKilogram,
	"ml":  UnitMilliliter,
	"мл":  UnitMilliliter,
	"l":   UnitLiter,
	"л":   UnitLiter,
	"pcs": UnitPiece,
	"pc":  UnitPiece,
	"шт":  UnitPiece,
}

// ParseUnit maps user input (latin or cyrillic abbreviations) to a Unit.
// Unrecognised input is returned trimmed and lower-cased.
func ParseUnit(s string) Unit {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, ".")
	if u, ok := unitAliases[key]; ok {
		return u
	}
	return Unit(key)
}

func (u Unit) Family() Family {
	switch u {
	case UnitGram, UnitKilogram:
		return FamilyMass
	case UnitMilliliter, UnitLiter:
		return FamilyVolume
	case UnitPiece:
		return FamilyCount
	}
	return ""
}

func (u Unit) Known() bool { return u.Family() != "" }

// Compatible reports whether quantities in a and b can be priced against each
// other. Unknown units are only compatible with themselves.
func Compatible(a, b Unit) bool {
	if a == b {
		return true
	}
	fa := a.Family()
	return fa != "" && fa == b.Family()
}

// scaledToCanonical reports whether the unit is stored in thousandths of its
// canonical price unit.
func (u Unit) scaledToCanonical() bool {
	return u == UnitGram || u == UnitMilliliter
}
