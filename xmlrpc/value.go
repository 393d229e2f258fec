package xmlrpc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

// Supported kinds of XML-RPC values.
const (
	StringKind Kind = iota
	IntKind
	DoubleKind
	BooleanKind
	DateTimeKind
	ArrayKind
	StructKind
)

var kindTags = [...]string{
	StringKind:   "string",
	IntKind:      "int",
	DoubleKind:   "double",
	BooleanKind:  "boolean",
	DateTimeKind: "dateTime.iso8601",
	ArrayKind:    "array",
	StructKind:   "struct",
}

// String returns the wire tag of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindTags) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindTags[k]
}

// Value represents an XML-RPC value. Only the field selected by Kind is
// meaningful.
type Value struct {
	Kind   Kind
	Text   string
	Int    int
	Double float64
	Bool   bool
	Time   time.Time
	Array  []*Value
	Struct []*Member
}

// Member represents an XML-RPC struct member.
type Member struct {
	Name  string
	Value *Value
}

// NewString creates a string value.
func NewString(s string) *Value {
	return &Value{Kind: StringKind, Text: s}
}

// NewInt creates an int value. The wire format is limited to 32 bit, larger
// numbers are rejected when marshalling (see IntInRange).
func NewInt(i int) *Value {
	return &Value{Kind: IntKind, Int: i}
}

// IntInRange reports whether i can be transferred as XML-RPC int (32 bit).
func IntInRange(i int64) bool {
	return i >= math.MinInt32 && i <= math.MaxInt32
}

// IntFromFloat creates an int value from a floating point number. The number
// must be integral and fit into 32 bit.
func IntFromFloat(f float64) (*Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt32 || f > math.MaxInt32 {
		return nil, &InvalidIntegerError{Value: f}
	}
	return NewInt(int(f)), nil
}

// NewDouble creates a double value. NaN and infinite numbers are rejected.
func NewDouble(f float64) (*Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &InvalidDoubleError{Value: f}
	}
	return &Value{Kind: DoubleKind, Double: f}, nil
}

// NewBoolean creates a boolean value.
func NewBoolean(b bool) *Value {
	return &Value{Kind: BooleanKind, Bool: b}
}

// NewDateTime creates a dateTime.iso8601 value. Sub-second precision is not
// transferred.
func NewDateTime(t time.Time) *Value {
	return &Value{Kind: DateTimeKind, Time: t}
}

// NewArray creates an array value.
func NewArray(elems ...*Value) *Value {
	if elems == nil {
		elems = []*Value{}
	}
	return &Value{Kind: ArrayKind, Array: elems}
}

// NewStruct creates a struct value. Member names must be unique.
func NewStruct(members ...*Member) (*Value, error) {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.Name] {
			return nil, fmt.Errorf("Duplicate struct member: %s", m.Name)
		}
		seen[m.Name] = true
	}
	if members == nil {
		members = []*Member{}
	}
	return &Value{Kind: StructKind, Struct: members}, nil
}

// Member returns the struct member with the specified name or nil.
func (v *Value) Member(name string) *Value {
	if v == nil || v.Kind != StructKind {
		return nil
	}
	for _, m := range v.Struct {
		if m.Name == name {
			return m.Value
		}
	}
	return nil
}

// set inserts or replaces a struct member.
func (v *Value) set(name string, mv *Value) {
	for _, m := range v.Struct {
		if m.Name == name {
			m.Value = mv
			return
		}
	}
	v.Struct = append(v.Struct, &Member{Name: name, Value: mv})
}

// Equal reports whether both values are deeply equal. Date/times are compared
// by instant.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case StringKind:
		return v.Text == o.Text
	case IntKind:
		return v.Int == o.Int
	case DoubleKind:
		return v.Double == o.Double
	case BooleanKind:
		return v.Bool == o.Bool
	case DateTimeKind:
		return v.Time.Equal(o.Time)
	case ArrayKind:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case StructKind:
		if len(v.Struct) != len(o.Struct) {
			return false
		}
		for _, m := range v.Struct {
			if !m.Value.Equal(o.Member(m.Name)) {
				return false
			}
		}
		return true
	}
	return false
}

// Native converts the value into native Go data types: string, int, float64,
// bool, time.Time, []interface{} and map[string]interface{}.
func (v *Value) Native() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case StringKind:
		return v.Text
	case IntKind:
		return v.Int
	case DoubleKind:
		return v.Double
	case BooleanKind:
		return v.Bool
	case DateTimeKind:
		return v.Time
	case ArrayKind:
		a := make([]interface{}, len(v.Array))
		for i, e := range v.Array {
			a[i] = e.Native()
		}
		return a
	case StructKind:
		m := make(map[string]interface{}, len(v.Struct))
		for _, e := range v.Struct {
			m[e.Name] = e.Value.Native()
		}
		return m
	}
	return nil
}

// String returns a short textual representation for log messages.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case StringKind:
		return strconv.Quote(v.Text)
	case IntKind:
		return strconv.Itoa(v.Int)
	case DoubleKind:
		return formatDouble(v.Double)
	case BooleanKind:
		return strconv.FormatBool(v.Bool)
	case DateTimeKind:
		return formatDateTime(v.Time)
	case ArrayKind:
		es := make([]string, len(v.Array))
		for i, e := range v.Array {
			es[i] = e.String()
		}
		return "[" + strings.Join(es, " ") + "]"
	case StructKind:
		ms := make([]string, len(v.Struct))
		for i, m := range v.Struct {
			ms[i] = m.Name + ":" + m.Value.String()
		}
		return "{" + strings.Join(ms, " ") + "}"
	}
	return v.Kind.String()
}

// Values is a list of values, e.g. the parameters of a call.
type Values []*Value
