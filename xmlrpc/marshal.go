package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Charset selects the character encoding of a generated XML document.
type Charset int

// Supported character encodings.
const (
	UTF8 Charset = iota
	ISO88591
)

func (c Charset) String() string {
	if c == ISO88591 {
		return "ISO-8859-1"
	}
	return "UTF-8"
}

const dateTimeLayout = "20060102T15:04:05-0700"

// MarshalCall encodes a procedure call as UTF-8 XML-RPC document. The same call
// always yields the same document.
func MarshalCall(call *ProcedureCall) ([]byte, error) {
	return MarshalCallCharset(call, UTF8)
}

// MarshalCallCharset encodes a procedure call with the specified character
// encoding.
func MarshalCallCharset(call *ProcedureCall, cs Charset) ([]byte, error) {
	if err := checkMethodName(call.Method); err != nil {
		return nil, err
	}
	ps := make([]*param, len(call.Args))
	for i, a := range call.Args {
		xv, err := toXML(a)
		if err != nil {
			return nil, fmt.Errorf("Parameter %d of %s: %w", i+1, call.Method, err)
		}
		ps[i] = &param{xv}
	}
	return encodeDocument(&methodCall{
		MethodName: call.Method,
		Params:     &params{ps},
	}, cs)
}

// MarshalResponse encodes a response (result value or fault) as UTF-8 XML-RPC
// document.
func MarshalResponse(resp *Response) ([]byte, error) {
	return MarshalResponseCharset(resp, UTF8)
}

// MarshalResponseCharset encodes a response with the specified character
// encoding.
func MarshalResponseCharset(resp *Response, cs Charset) ([]byte, error) {
	var mr *methodResponse
	if resp.Fault != nil {
		fv, err := NewStruct(
			&Member{"faultCode", NewInt(resp.Fault.Code)},
			&Member{"faultString", NewString(resp.Fault.Message)},
		)
		if err != nil {
			return nil, err
		}
		xv, err := toXML(fv)
		if err != nil {
			return nil, err
		}
		mr = &methodResponse{Fault: xv}
	} else {
		xv, err := toXML(resp.Value)
		if err != nil {
			return nil, fmt.Errorf("Result: %w", err)
		}
		mr = &methodResponse{Params: &params{[]*param{{xv}}}}
	}
	return encodeDocument(mr, cs)
}

func encodeDocument(doc interface{}, cs Charset) ([]byte, error) {
	var buf bytes.Buffer
	// write xml header
	buf.WriteString(`<?xml version="1.0" encoding="` + cs.String() + `"?>` + "\n")
	// encode object tree
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if cs == ISO88591 {
		// characters outside of ISO-8859-1 become character references
		e := encoding.HTMLEscapeUnsupported(charmap.ISO8859_1.NewEncoder())
		return e.Bytes(buf.Bytes())
	}
	return buf.Bytes(), nil
}

func checkMethodName(name string) error {
	if name == "" {
		return &InvalidMethodNameError{name}
	}
	for _, c := range name {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '_', c == '.', c == ':', c == '/':
		default:
			return &InvalidMethodNameError{name}
		}
	}
	return nil
}

func formatDouble(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

func toXML(v *Value) (*xmlValue, error) {
	if v == nil {
		return nil, errors.New("Missing value")
	}
	out := &xmlValue{}
	switch v.Kind {
	case StringKind:
		out.String = &rawText{Inner: Escape(v.Text)}
	case IntKind:
		if !IntInRange(int64(v.Int)) {
			return nil, &InvalidIntegerError{v.Int}
		}
		s := strconv.Itoa(v.Int)
		out.Int = &s
	case DoubleKind:
		if math.IsNaN(v.Double) || math.IsInf(v.Double, 0) {
			return nil, &InvalidDoubleError{v.Double}
		}
		s := formatDouble(v.Double)
		out.Double = &s
	case BooleanKind:
		s := "0"
		if v.Bool {
			s = "1"
		}
		out.Boolean = &s
	case DateTimeKind:
		s := formatDateTime(v.Time)
		out.DateTime = &s
	case ArrayKind:
		data := make([]*xmlValue, len(v.Array))
		for i, e := range v.Array {
			xe, err := toXML(e)
			if err != nil {
				return nil, fmt.Errorf("Array element %d: %w", i, err)
			}
			data[i] = xe
		}
		out.Array = &xmlArray{xmlData{data}}
	case StructKind:
		ms := make([]*xmlMember, len(v.Struct))
		for i, m := range v.Struct {
			xm, err := toXML(m.Value)
			if err != nil {
				return nil, fmt.Errorf("Struct member %s: %w", m.Name, err)
			}
			ms[i] = &xmlMember{m.Name, xm}
		}
		out.Struct = &xmlStruct{ms}
	default:
		return nil, &UnknownTypeError{v.Kind.String()}
	}
	return out, nil
}
