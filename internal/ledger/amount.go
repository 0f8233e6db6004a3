package ledger

import (
	"math"
	"strconv"
)

// ParsePositiveAmount normalizes a raw request value into a strictly
// positive amount. JSON numbers arrive as float64, but direct callers may
// pass integers or decimal strings. The second return is false for
// anything that is not a finite number greater than zero: non-numeric
// strings, NaN, infinities, zero, negatives and absent values. Absence of
// a valid amount is an expected outcome, not an error.
func ParsePositiveAmount(raw any) (float64, bool) {
	var amount float64

	switch v := raw.(type) {
	case float64:
		amount = v
	case float32:
		amount = float64(v)
	case int:
		amount = float64(v)
	case int32:
		amount = float64(v)
	case int64:
		amount = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		amount = parsed
	default:
		return 0, false
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, false
	}

	return amount, true
}
