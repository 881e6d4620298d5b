package ftfz

import (
	"fmt"
	"math"
)

// fieldKind discriminates the value stored in a Field.
type fieldKind uint8

const (
	kindString fieldKind = iota
	kindInt64
	kindUint64
	kindBool
	kindFloat64
)

// Field is one named, typed value attached to a span or event. Values are
// a closed set of kinds; anything else folds to its string form via Any.
type Field struct {
	// Key is the field name.
	Key string

	str  string
	num  uint64 // int64, uint64 or float64 bits, depending on kind
	b    bool
	kind fieldKind
}

// String builds a string-valued field.
func String(key, value string) Field {
	return Field{Key: key, kind: kindString, str: value}
}

// Int64 builds a signed integer field.
func Int64(key string, value int64) Field {
	return Field{Key: key, kind: kindInt64, num: uint64(value)}
}

// Int builds a signed integer field from a plain int.
func Int(key string, value int) Field {
	return Int64(key, int64(value))
}

// Uint64 builds an unsigned integer field.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, kind: kindUint64, num: value}
}

// Bool builds a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, kind: kindBool, b: value}
}

// Float64 builds a floating-point field.
func Float64(key string, value float64) Field {
	return Field{Key: key, kind: kindFloat64, num: math.Float64bits(value)}
}

// Any builds a field from an arbitrary value. Values outside the typed
// kinds fold to their fmt string representation.
func Any(key string, value interface{}) Field {
	switch v := value.(type) {
	case string:
		return String(key, v)
	case bool:
		return Bool(key, v)
	case int:
		return Int64(key, int64(v))
	case int32:
		return Int64(key, int64(v))
	case int64:
		return Int64(key, v)
	case uint:
		return Uint64(key, uint64(v))
	case uint32:
		return Uint64(key, uint64(v))
	case uint64:
		return Uint64(key, v)
	case float32:
		return Float64(key, float64(v))
	case float64:
		return Float64(key, v)
	default:
		return String(key, fmt.Sprint(v))
	}
}
