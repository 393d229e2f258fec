package xmlrpc

import (
	"fmt"
	"time"
)

// Query helps to extract values from a Value tree. The first error is
// remembered and all further accesses return zero values.
type Query struct {
	value *Value
	err   *error
	// faster lookup for structs
	lookup map[string]*Query
	// cache arrays
	array []*Query
}

// Q creates a new Query for the specified Value.
func Q(v *Value) *Query {
	var err error
	return &Query{value: v, err: &err}
}

// Err returns the first encountered error.
func (q *Query) Err() error {
	return *q.err
}

// Value returns the wrapped Value.
func (q *Query) Value() *Value {
	return q.value
}

func (q *Query) is(k Kind) bool {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return false
	}
	if q.value.Kind != k {
		*q.err = fmt.Errorf("Not a %s: %s", k, q.value.Kind)
		return false
	}
	return true
}

// Int gets an XML-RPC int value.
func (q *Query) Int() int {
	if !q.is(IntKind) {
		return 0
	}
	return q.value.Int
}

// Bool gets an XML-RPC boolean value.
func (q *Query) Bool() bool {
	if !q.is(BooleanKind) {
		return false
	}
	return q.value.Bool
}

// String gets an XML-RPC string value.
func (q *Query) String() string {
	if !q.is(StringKind) {
		return ""
	}
	return q.value.Text
}

// Float64 gets an XML-RPC double value. An int is converted.
func (q *Query) Float64() float64 {
	if q.Err() == nil && q.value != nil && q.value.Kind == IntKind {
		return float64(q.value.Int)
	}
	if !q.is(DoubleKind) {
		return 0
	}
	return q.value.Double
}

// Time gets an XML-RPC dateTime.iso8601 value.
func (q *Query) Time() time.Time {
	if !q.is(DateTimeKind) {
		return time.Time{}
	}
	return q.value.Time
}

// Any returns the native representation (see Value.Native) or nil for an
// empty optional.
func (q *Query) Any() interface{} {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return nil
	}
	return q.value.Native()
}

// Map returns all members of an XML-RPC struct.
func (q *Query) Map() map[string]*Query {
	// is map already created?
	if q.lookup != nil {
		return q.lookup
	}
	if !q.is(StructKind) {
		return nil
	}
	// create map
	q.lookup = make(map[string]*Query)
	for _, m := range q.value.Struct {
		q.lookup[m.Name] = &Query{value: m.Value, err: q.err}
	}
	return q.lookup
}

// key gets the specified member from a struct.
func (q *Query) key(name string, must bool) *Query {
	m := q.Map()
	// previous error?
	if q.Err() != nil {
		return &Query{err: q.err}
	}
	// lookup
	f, ok := m[name]
	if !ok {
		if must {
			*q.err = fmt.Errorf("Field not found: %s", name)
		}
		return &Query{err: q.err}
	}
	return f
}

// Key sets an error, if the specified member is missing.
func (q *Query) Key(name string) *Query {
	return q.key(name, true)
}

// TryKey does not set an error, if the specified member is missing.
func (q *Query) TryKey(name string) *Query {
	return q.key(name, false)
}

// Slice returns all array elements.
func (q *Query) Slice() []*Query {
	// array already created?
	if q.array != nil {
		return q.array
	}
	if !q.is(ArrayKind) {
		return nil
	}
	// create array
	q.array = make([]*Query, len(q.value.Array))
	for i, v := range q.value.Array {
		q.array[i] = &Query{value: v, err: q.err}
	}
	return q.array
}

// Strings returns a string array.
func (q *Query) Strings() []string {
	var r []string
	for _, e := range q.Slice() {
		r = append(r, e.String())
	}
	if q.Err() != nil {
		// return empty slice
		return nil
	}
	return r
}

// Idx returns the array element at i.
func (q *Query) Idx(i int) *Query {
	s := q.Slice()
	// previous error
	if q.Err() != nil {
		return &Query{err: q.err}
	}
	// check bounds
	if i < 0 || i >= len(s) {
		*q.err = fmt.Errorf("Index out of bounds (array length: %d): %d", len(s), i)
		return &Query{err: q.err}
	}
	return s[i]
}
