package xmlrpc

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Type is a wire type, used to select the encoding of a native value.
type Type int

// Wire types.
const (
	TypeString Type = iota
	TypeInt
	TypeDouble
	TypeBoolean
	TypeArray
	TypeStruct
	TypeDateTime
)

var typeNames = [...]string{
	TypeString:   "string",
	TypeInt:      "int",
	TypeDouble:   "double",
	TypeBoolean:  "boolean",
	TypeArray:    "array",
	TypeStruct:   "struct",
	TypeDateTime: "dateTime.iso8601",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType parses a wire type tag. i4 is accepted for int, date and dateTime
// for dateTime.iso8601.
func ParseType(tag string) (Type, error) {
	switch tag {
	case "string":
		return TypeString, nil
	case "int", "i4":
		return TypeInt, nil
	case "double":
		return TypeDouble, nil
	case "boolean":
		return TypeBoolean, nil
	case "array":
		return TypeArray, nil
	case "struct":
		return TypeStruct, nil
	case "dateTime.iso8601", "dateTime", "date":
		return TypeDateTime, nil
	}
	return 0, &UnknownTypeError{Tag: tag}
}

var timeType = reflect.TypeOf(time.Time{})

// InferType selects a wire type for a native value. Numbers are always mapped
// to double; an int must be requested explicitly.
func InferType(in interface{}) (Type, error) {
	switch v := in.(type) {
	case string:
		return TypeString, nil
	case bool:
		return TypeBoolean, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return TypeDouble, nil
	case *Value:
		if v == nil {
			return 0, &UnsupportedTypeError{in}
		}
		return kindType(v.Kind), nil
	case time.Time, *time.Time:
		return TypeDateTime, nil
	case nil:
		return 0, &UnsupportedTypeError{in}
	}

	// remaining composites
	rv := reflect.ValueOf(in)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// base64 is not supported
			return 0, &UnsupportedTypeError{in}
		}
		return TypeArray, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return 0, &UnsupportedTypeError{in}
		}
		return TypeStruct, nil
	case reflect.Struct:
		return TypeStruct, nil
	}
	return 0, &UnsupportedTypeError{in}
}

func kindType(k Kind) Type {
	switch k {
	case IntKind:
		return TypeInt
	case DoubleKind:
		return TypeDouble
	case BooleanKind:
		return TypeBoolean
	case DateTimeKind:
		return TypeDateTime
	case ArrayKind:
		return TypeArray
	case StructKind:
		return TypeStruct
	}
	return TypeString
}

// NewValue creates a value from a native data type. The wire type is
// determined by InferType.
func NewValue(in interface{}) (*Value, error) {
	t, err := InferType(in)
	if err != nil {
		return nil, err
	}
	return NewTypedValue(in, t)
}

// NewTypedValue creates a value of the specified wire type from a native data
// type. Elements of arrays and members of structs are converted with
// NewValue.
func NewTypedValue(in interface{}, t Type) (*Value, error) {
	if v, ok := in.(*Value); ok {
		if v == nil {
			return nil, &UnsupportedTypeError{in}
		}
		if kindType(v.Kind) != t {
			// explicit type wins, convert native representation
			return NewTypedValue(v.Native(), t)
		}
		return v, nil
	}
	switch t {
	case TypeString:
		switch v := in.(type) {
		case string:
			return NewString(v), nil
		case fmt.Stringer:
			return NewString(v.String()), nil
		}
	case TypeBoolean:
		if v, ok := in.(bool); ok {
			return NewBoolean(v), nil
		}
	case TypeInt:
		return toInt(in)
	case TypeDouble:
		if f, ok := toFloat(in); ok {
			return NewDouble(f)
		}
	case TypeDateTime:
		switch v := in.(type) {
		case time.Time:
			return NewDateTime(v), nil
		case *time.Time:
			if v != nil {
				return NewDateTime(*v), nil
			}
		}
	case TypeArray:
		return toArray(in)
	case TypeStruct:
		return toStruct(in)
	default:
		return nil, fmt.Errorf("Invalid type: %v", t)
	}
	return nil, &UnsupportedTypeError{in}
}

func toFloat(in interface{}) (float64, bool) {
	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func toInt(in interface{}) (*Value, error) {
	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if !IntInRange(i) {
			return nil, &InvalidIntegerError{in}
		}
		return NewInt(int(i)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt32 {
			return nil, &InvalidIntegerError{in}
		}
		return NewInt(int(u)), nil
	case reflect.Float32, reflect.Float64:
		return IntFromFloat(rv.Float())
	}
	return nil, &UnsupportedTypeError{in}
}

func toArray(in interface{}) (*Value, error) {
	rv := reflect.ValueOf(in)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &UnsupportedTypeError{in}
	}
	es := make([]*Value, rv.Len())
	for i := range es {
		e, err := NewValue(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("Array element %d: %w", i, err)
		}
		es[i] = e
	}
	return NewArray(es...), nil
}

func toStruct(in interface{}) (*Value, error) {
	rv := reflect.ValueOf(in)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	out := &Value{Kind: StructKind, Struct: []*Member{}}
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		// sort keys, the map iteration order is random
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			mv, err := NewValue(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("Struct member %s: %w", k, err)
			}
			out.set(k, mv)
		}
	case rv.Kind() == reflect.Struct && rv.Type() != timeType:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if f.PkgPath != "" {
				// unexported
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("xmlrpc"); ok {
				tag = strings.Split(tag, ",")[0]
				if tag == "-" {
					continue
				}
				if tag != "" {
					name = tag
				}
			}
			mv, err := NewValue(rv.Field(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("Struct member %s: %w", name, err)
			}
			out.set(name, mv)
		}
	default:
		return nil, &UnsupportedTypeError{in}
	}
	return out, nil
}
