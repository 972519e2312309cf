package cognitive

import (
	"math"
	"time"
)

// Kind discriminates the variants of a property Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindDateTime
	KindReference
	KindList
	KindJSON
)

// String returns the variant name, used in logs and stats.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindDateTime:
		return "datetime"
	case KindReference:
		return "reference"
	case KindList:
		return "list"
	case KindJSON:
		return "json"
	}
	return "unknown"
}

// Value is a schema-less property value: one of Null, String, Integer,
// Float, Boolean, DateTime (ISO-8601 string), Reference (ObjectID), List,
// or JSON (opaque structured data). Accessors return ok=false on variant
// mismatch; there is no implicit coercion.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	raw  any
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Integer returns a 64-bit integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float returns a 64-bit float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// DateTime returns a datetime value holding an ISO-8601 string.
func DateTime(iso string) Value { return Value{kind: KindDateTime, str: iso} }

// Reference returns a value referencing another object by id.
func Reference(id ObjectID) Value { return Value{kind: KindReference, str: string(id)} }

// List returns an ordered, possibly heterogeneous list value.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// JSON returns an opaque structured value for anything not otherwise
// representable.
func JSON(v any) Value { return Value{kind: KindJSON, raw: v} }

// Kind reports which variant this value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload when the value is a String.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsInteger returns the integer payload when the value is an Integer.
func (v Value) AsInteger() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float payload when the value is a Float.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsBoolean returns the boolean payload when the value is a Boolean.
func (v Value) AsBoolean() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// AsDateTime returns the ISO-8601 string when the value is a DateTime.
func (v Value) AsDateTime() (string, bool) {
	if v.kind != KindDateTime {
		return "", false
	}
	return v.str, true
}

// AsReference returns the referenced id when the value is a Reference.
func (v Value) AsReference() (ObjectID, bool) {
	if v.kind != KindReference {
		return "", false
	}
	return ObjectID(v.str), true
}

// AsList returns the elements when the value is a List.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// AsJSON returns the opaque payload when the value is a JSON value.
func (v Value) AsJSON() (any, bool) {
	if v.kind != KindJSON {
		return nil, false
	}
	return v.raw, true
}

// FromAny converts a generic decoded value (as produced by yaml/json
// unmarshalling into any) to a Value. The conversion never fails:
// mappings pass through opaquely as JSON, unrepresentable input degrades
// to Null.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Boolean(t)
	case int:
		return Integer(int64(t))
	case int64:
		return Integer(t)
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t))
		}
		return Integer(int64(t))
	case float64:
		// YAML decodes every number it cannot type as float64; keep
		// exactly-integral values as integers.
		if t == math.Trunc(t) && !math.IsInf(t, 0) && math.Abs(t) < math.MaxInt64 {
			return Integer(int64(t))
		}
		return Float(t)
	case string:
		return String(t)
	case time.Time:
		return DateTime(t.Format(time.RFC3339))
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return List(items...)
	case map[string]any:
		return JSON(t)
	case map[any]any:
		return JSON(t)
	default:
		return Null()
	}
}

// Interface converts the value back to a generic form suitable for yaml
// or json marshalling. The inverse of FromAny up to the documented lossy
// corners.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString, KindDateTime, KindReference:
		return v.str
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBoolean:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindJSON:
		return v.raw
	}
	return nil
}
