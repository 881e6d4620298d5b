package ftf

import "math"

// ArgumentKind identifies the value type carried by an Argument.
type ArgumentKind uint8

// Argument value kinds.
const (
	ArgString ArgumentKind = iota
	ArgInt64
	ArgUint64
	ArgBool
	ArgFloat64
)

// Argument is one named, typed value attached to an event record.
type Argument struct {
	// Name references the argument name string.
	Name StringRef
	// Str is the value reference when Kind is ArgString.
	Str StringRef
	// Int, Uint, Float and Bool carry the value for the remaining kinds.
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	// Kind selects which value field is meaningful.
	Kind ArgumentKind
}

// StringArg builds a string-valued argument.
func StringArg(name, value StringRef) Argument {
	return Argument{Kind: ArgString, Name: name, Str: value}
}

// Int64Arg builds a signed integer argument.
func Int64Arg(name StringRef, value int64) Argument {
	return Argument{Kind: ArgInt64, Name: name, Int: value}
}

// Uint64Arg builds an unsigned integer argument.
func Uint64Arg(name StringRef, value uint64) Argument {
	return Argument{Kind: ArgUint64, Name: name, Uint: value}
}

// BoolArg builds a boolean argument.
func BoolArg(name StringRef, value bool) Argument {
	return Argument{Kind: ArgBool, Name: name, Bool: value}
}

// Float64Arg builds a floating-point argument.
func Float64Arg(name StringRef, value float64) Argument {
	return Argument{Kind: ArgFloat64, Name: name, Float: value}
}

// wireType returns the on-the-wire argument type value.
func (a Argument) wireType() uint64 {
	switch a.Kind {
	case ArgInt64:
		return wireArgInt64
	case ArgUint64:
		return wireArgUint64
	case ArgFloat64:
		return wireArgFloat64
	case ArgBool:
		return wireArgBool
	default:
		return wireArgString
	}
}

// valueWords returns the number of body words the value occupies beyond the
// argument header and name payload.
func (a Argument) valueWords() int {
	switch a.Kind {
	case ArgInt64, ArgUint64, ArgFloat64:
		return 1
	case ArgString:
		return a.Str.payloadWords()
	default: // bool: value lives in the header word
		return 0
	}
}

// sizeWords returns the total encoded size of the argument in words.
func (a Argument) sizeWords() int {
	return 1 + a.Name.payloadWords() + a.valueWords()
}

// encode appends the argument's header, name payload and value.
func (a Argument) encode(e *encoder) {
	header := a.wireType() |
		uint64(a.sizeWords())<<4 |
		a.Name.field()<<16

	switch a.Kind {
	case ArgString:
		header |= a.Str.field() << 32
	case ArgBool:
		if a.Bool {
			header |= 1 << 32
		}
	}

	e.word(header)
	a.Name.encode(e)

	switch a.Kind {
	case ArgInt64:
		e.word(uint64(a.Int))
	case ArgUint64:
		e.word(a.Uint)
	case ArgFloat64:
		e.word(math.Float64bits(a.Float))
	case ArgString:
		a.Str.encode(e)
	}
}
