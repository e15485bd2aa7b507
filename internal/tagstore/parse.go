package tagstore

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ParseIncomingValue decodes a raw JSON value from a REST payload (the
// `value`/`initial_value` field) into the store's internal representation.
//
// A JSON string that parses as a decimal is kept as decimal.Decimal so that
// trailing zeros in its literal form (e.g. "1.2300") survive — this is what
// makes the single-tag GET round-trip preserve decimal precision. A JSON
// number decodes as float64 or int64 (integral); booleans and
// non-numeric strings pass through unchanged.
func ParseIncomingValue(raw json.RawMessage) (any, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if d, derr := decimal.NewFromString(asString); derr == nil {
			return d, nil
		}
		return asString, nil
	}

	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return asBool, nil
	}

	var asFloat float64
	if err := json.Unmarshal(raw, &asFloat); err == nil {
		if asFloat == float64(int64(asFloat)) {
			return int64(asFloat), nil
		}
		return asFloat, nil
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}
