package normaliser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney accepts the currency-formatted strings the source workbook
// carries — "¥1,234.56", "1,234.56", "1234", or blank — and returns the
// numeric value as a float64. Thousand separators and the yuan sign are
// dropped; blank or non-numeric input yields 0, never an error, per §4.1:
// money parsing never fails a row.
//
// decimal.Decimal is used for the parse itself (not float64 the whole way
// through) so that thousand-separator stripping and rounding artifacts
// don't introduce drift before the value is handed to the rest of the
// pipeline; summation order is still the caller's responsibility (see
// internal/aggregator's ascending (source_month, event_date, id) rule).
func ParseMoney(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if f < 0 {
		return 0
	}
	return f
}
