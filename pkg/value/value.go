package value

import (
	"fmt"
	"math"
	"sync/atomic"
)

type Type uint8

const (
	TypeUndefined Type = iota
	TypeNil

	TypeBoolean
	TypeInteger
	TypeFloat
	TypeSymbol

	TypeString
	TypeObject
)

// String returns a human-readable string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeSymbol:
		return "symbol"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// heapCell is the shared backing allocation for string and object
// values. The frozen flag lives here so every Value copy referring to
// the same cell observes the same freeze state.
type heapCell struct {
	frozen  atomic.Bool
	str     string
	payload any
}

// Value is a runtime value as stored in attribute slots. Undefined,
// nil, booleans, numbers and symbols are immediates: self-contained and
// always frozen. Strings and objects reference a heap cell carrying a
// frozen flag shared by all copies of the Value.
//
// Values are multi-word; a Value stored in shared storage must never be
// overwritten in place while readers may be looking at it. The fields
// engine copies its backing store on every update for this reason.
type Value struct {
	typ Type
	num uint64 // integer/float bits, boolean
	sym string // symbol text
	obj *heapCell
}

var Undefined = Value{typ: TypeUndefined}
var Nil = Value{typ: TypeNil}

func Boolean(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{typ: TypeBoolean, num: n}
}

func Integer(i int64) Value {
	return Value{typ: TypeInteger, num: uint64(i)}
}

func Float(f float64) Value {
	return Value{typ: TypeFloat, num: math.Float64bits(f)}
}

func Symbol(name string) Value {
	return Value{typ: TypeSymbol, sym: name}
}

// NewString allocates a mutable string value. Call Freeze to make it
// shareable across contexts.
func NewString(s string) Value {
	return Value{typ: TypeString, obj: &heapCell{str: s}}
}

// NewObject wraps an arbitrary payload as a mutable heap value.
func NewObject(payload any) Value {
	return Value{typ: TypeObject, obj: &heapCell{payload: payload}}
}

func (v Value) Type() Type        { return v.typ }
func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNil() bool       { return v.typ == TypeNil }

func (v Value) AsBoolean() bool { return v.num != 0 }

func (v Value) AsInteger() int64 { return int64(v.num) }

func (v Value) AsFloat() float64 { return math.Float64frombits(v.num) }

func (v Value) AsSymbol() string { return v.sym }

func (v Value) AsString() string {
	if v.obj == nil {
		return ""
	}
	return v.obj.str
}

// Payload returns the wrapped payload of an object value.
func (v Value) Payload() any {
	if v.obj == nil {
		return nil
	}
	return v.obj.payload
}

// Frozen reports whether the value is immutable. Immediates are always
// frozen; heap values are frozen once Freeze has been called on any
// copy of the value.
func (v Value) Frozen() bool {
	if v.obj == nil {
		return true
	}
	return v.obj.frozen.Load()
}

// Freeze marks a heap value immutable. Freezing is one-way and is a
// no-op on immediates. Safe to call while other contexts hold copies of
// the value.
func (v Value) Freeze() {
	if v.obj != nil {
		v.obj.frozen.Store(true)
	}
}

// Is reports identity equality: immediates compare by type and bits,
// heap values by cell identity.
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	if v.obj != nil || other.obj != nil {
		return v.obj == other.obj
	}
	return v.num == other.num && v.sym == other.sym
}

func (v Value) String() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNil:
		return "nil"
	case TypeBoolean:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case TypeInteger:
		return fmt.Sprintf("%d", v.AsInteger())
	case TypeFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case TypeSymbol:
		return ":" + v.sym
	case TypeString:
		return fmt.Sprintf("%q", v.AsString())
	case TypeObject:
		return fmt.Sprintf("#<object %p>", v.obj)
	default:
		return "<unknown>"
	}
}
