package costcalc

import "github.com/shopspring/decimal"

// BatchInput carries the user-entered figures of one received lot. Nil means
// "not entered".
type BatchInput struct {
	Unit         Unit
	Brutto       *float64
	Netto        *float64
	WastePercent *float64
	GrossPrice   *float64
}

type Batch struct {
	Unit         Unit
	Brutto       float64
	Netto        float64
	WastePercent float64
	GrossPrice   float64
	// PricePerUnit is the gross price per canonical unit of brutto.
	PricePerUnit float64
	// NetPrice is the value of the usable netto portion at PricePerUnit.
	NetPrice float64
	// NetPricePerUnit is the gross price spread over netto only; recipes
	// are costed with it so waste is paid for by the usable part.
	NetPricePerUnit float64
}

// ReconcileBatch keeps two of {brutto, netto, waste%} independent and derives
// the third. When both netto and waste are given, netto wins. Counted goods
// have no waste: netto is forced to brutto.
func ReconcileBatch(in BatchInput) (Batch, error) {
	out := Batch{Unit: in.Unit}

	if in.Brutto == nil || !(*in.Brutto > 0) || !IsFinite(*in.Brutto) {
		return out, ErrInvalidQuantity
	}
	out.Brutto = *in.Brutto

	switch {
	case in.Unit.Family() == FamilyCount:
		out.Netto = out.Brutto
		out.WastePercent = 0

	case in.Netto != nil:
		n := *in.Netto
		if !(n > 0) || !IsFinite(n) {
			return out, ErrInvalidQuantity
		}
		if n > out.Brutto {
			return out, ErrNettoExceedsBrutto
		}
		out.Netto = n
		out.WastePercent = wasteFromNetto(out.Brutto, n).Round(2).InexactFloat64()

	case in.WastePercent != nil:
		w := *in.WastePercent
		if !(w >= 0 && w < 100) {
			return out, ErrInvalidWaste
		}
		out.WastePercent = w
		out.Netto = nettoFromWaste(out.Brutto, w).Round(3).InexactFloat64()

	default:
		out.Netto = out.Brutto
	}

	if in.GrossPrice != nil {
		if !(*in.GrossPrice >= 0) || !IsFinite(*in.GrossPrice) {
			return out, ErrInvalidPrice
		}
		out.GrossPrice = *in.GrossPrice
	}

	if out.GrossPrice > 0 {
		perBrutto, err := PricePerUnit(out.GrossPrice, out.Brutto, in.Unit)
		if err != nil {
			return out, err
		}
		perNetto, err := PricePerUnit(out.GrossPrice, out.Netto, in.Unit)
		if err != nil {
			return out, err
		}
		out.PricePerUnit = round(perBrutto, 4)
		out.NetPricePerUnit = round(perNetto, 4)
		out.NetPrice = decimal.NewFromFloat(CalculateTotalCost(out.Netto, out.PricePerUnit, string(in.Unit))).Round(2).InexactFloat64()
	}

	return out, nil
}
