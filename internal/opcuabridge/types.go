// Package opcuabridge mirrors Tag Store entries onto an OPC UA address
// space: one variable node per tag under a namespace-scoped HMI_Tags
// folder, mutated exclusively by a single scheduler goroutine so the
// address space never needs its own lock.
//
// The reference OPC UA example in this codebase's lineage is a client
// (device polling), not a server; the node/variable bookkeeping below is
// this package's own design, built directly on gopcua's ua.Variant type
// system and VariantType constants the client example also uses for value
// conversion.
package opcuabridge

import (
	"strings"

	"github.com/gopcua/opcua/ua"
)

// VariantTypeFor resolves a tag's declared data_type string to the OPC UA
// variant type to use for its node, via case-insensitive substring
// matching checked in priority order.
func VariantTypeFor(dataType string) ua.TypeID {
	dt := strings.ToLower(dataType)
	switch {
	case strings.Contains(dt, "bool"):
		return ua.TypeIDBoolean
	case strings.Contains(dt, "uint"):
		return ua.TypeIDUint32
	case strings.Contains(dt, "int"):
		return ua.TypeIDInt64
	case strings.Contains(dt, "float"):
		return ua.TypeIDFloat
	case strings.Contains(dt, "double"):
		return ua.TypeIDDouble
	case strings.Contains(dt, "string"), strings.Contains(dt, "str"):
		return ua.TypeIDString
	default:
		return ua.TypeIDDouble
	}
}

// NormalizeForWrite coerces a Tag Store value (which may be a
// decimal.Decimal, bool, int64, float64, or string — see internal/tagstore)
// into a Go value ua.MustVariant can wrap for the given target variant
// type.
func NormalizeForWrite(value any, target ua.TypeID) any {
	type decimalLike interface {
		Float64() (float64, bool)
		IntPart() int64
	}

	if d, ok := value.(decimalLike); ok {
		switch target {
		case ua.TypeIDInt64, ua.TypeIDUint32, ua.TypeIDBoolean:
			n := d.IntPart()
			if target == ua.TypeIDBoolean {
				return n != 0
			}
			if target == ua.TypeIDUint32 {
				return uint32(n)
			}
			return n
		default:
			f, _ := d.Float64()
			if target == ua.TypeIDFloat {
				return float32(f)
			}
			return f
		}
	}

	switch v := value.(type) {
	case bool, int64, float64, string:
		return v
	case int:
		return int64(v)
	default:
		return value
	}
}
