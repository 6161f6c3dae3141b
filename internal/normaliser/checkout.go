package normaliser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// checkoutTimeLayouts lists every textual time-of-day format the checkout
// column accepts, tried in turn — the same "attempt each known layout in
// order" idiom ParseDate uses for the date column.
var checkoutTimeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

// ParseCheckoutTime accepts a checkout-time cell as clock text (with or
// without a leading zero or seconds) or a spreadsheet time serial (the
// fractional part of a day), and returns it canonicalised to zero-padded
// 24-hour "HH:MM". Callers rely on this zero-padding to make later
// lexicographic comparisons (e.g. "19:30" cutoffs) correct; a bare "9:15"
// would otherwise sort after "19:30". ok=false for a blank or unparsable
// cell, in which case the caller leaves CheckoutTime nil rather than
// failing the row.
func ParseCheckoutTime(raw string) (canon string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToHHMM(serial), true
	}

	for _, layout := range checkoutTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.Format("15:04"), true
		}
	}

	return "", false
}

// serialToHHMM converts a spreadsheet time serial (the fractional-day part
// of an Excel date/time cell) into "HH:MM".
func serialToHHMM(serial float64) string {
	frac := serial - math.Trunc(serial)
	if frac < 0 {
		frac += 1
	}
	totalMinutes := int(math.Round(frac * 24 * 60))
	totalMinutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
