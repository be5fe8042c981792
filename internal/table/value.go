package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type held by a Value
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindInt
	KindFloat
)

// String returns the kind name used in inspection output
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "missing"
	}
}

// Value is a single cell. The zero Value is missing.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// Missing returns a missing value
func Missing() Value { return Value{} }

// String wraps a string. Blank strings are kept as strings; use Parse for CSV input.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int wraps an integer
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float. NaN is stored as missing.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// Parse converts raw spreadsheet or CSV text into a Value.
// Empty cells and the usual NA spellings become missing; everything else stays a string.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null", "none", "#n/a":
		return Missing()
	}
	return String(s)
}

// Kind returns the value's kind
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is missing
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Text returns the value formatted for CSV output; missing is the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// Float64 returns the numeric value. Strings are parsed; ok is false when the
// value is missing or not numeric.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int64 returns the value as an integer, truncating floats.
// Numbers outside the int64 range do not convert.
func (v Value) Int64() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}
	f, ok := v.Float64()
	if !ok || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Integral is Int64 without truncation: a fractional number does not convert
func (v Value) Integral() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}
	f, ok := v.Float64()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return v.Int64()
}

// Equal compares kind and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	default:
		return true
	}
}
