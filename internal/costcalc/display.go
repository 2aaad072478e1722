package costcalc

import (
	"fmt"
	"time"
)

const (
	NoExpiry         = "—"
	expiryDateLayout = "02.01.2006"
)

// FormatVolumeDisplay re-expresses large milliliter and fractional liter
// values in the more readable unit. It only affects presentation.
func FormatVolumeDisplay(value float64, unit string) string {
	switch ParseUnit(unit) {
	case UnitMilliliter:
		if value >= 1000 {
			return fmt.Sprintf("%.3f л", value/1000)
		}
	case UnitLiter:
		if value < 1 {
			return fmt.Sprintf("%.3f мл", value*1000)
		}
	}
	return fmt.Sprintf("%.3f", value)
}

func ExpiryDate(days int) string {
	return ExpiryDateFrom(time.Now(), days)
}

// ExpiryDateFrom returns now+days as a local calendar date, or NoExpiry when
// no shelf life is set.
func ExpiryDateFrom(now time.Time, days int) string {
	if days <= 0 {
		return NoExpiry
	}
	return now.AddDate(0, 0, days).Format(expiryDateLayout)
}
