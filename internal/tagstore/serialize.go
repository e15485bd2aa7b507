package tagstore

import "github.com/shopspring/decimal"

// SerializeValue converts a raw or scaled value into something
// encoding/json can marshal, honoring the serialization contract: decimals
// that are integral map to JSON integers; decimals the caller wants to
// preserve verbatim (trailing zeros intact, e.g. a single-tag GET) serialize
// as JSON strings; other decimals serialize as JSON numbers.
func SerializeValue(v any, preserveDecimalString bool) any {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return v
	}
	if preserveDecimalString {
		if d.Exponent() < 0 {
			return d.StringFixed(-d.Exponent())
		}
		return d.String()
	}
	if d.IsInteger() {
		return d.IntPart()
	}
	f, _ := d.Float64()
	return f
}
