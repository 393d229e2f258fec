package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// accepted layouts of dateTime.iso8601, values without zone are UTC
var dateTimeLayouts = []string{
	"20060102T15:04:05Z0700",
	"20060102T15:04:05Z07:00",
	"20060102T150405Z0700",
	"20060102T150405Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"20060102T15:04:05",
	"20060102T150405",
	"2006-01-02T15:04:05",
}

// ParseResponse decodes an XML-RPC response document. A fault response is not
// an error: it is returned with Response.Fault set.
func ParseResponse(doc []byte) (*Response, error) {
	mr := &methodResponse{}
	if err := decodeDocument(doc, "methodResponse", mr); err != nil {
		return nil, err
	}

	// success response
	if mr.Params != nil {
		for _, p := range mr.Params.Param {
			if p.Value == nil {
				continue
			}
			v, err := fromXML(p.Value)
			if err != nil {
				return nil, err
			}
			return &Response{Value: v}, nil
		}
	}

	// fault response
	if mr.Fault != nil {
		fv, err := fromXML(mr.Fault)
		if err != nil {
			return nil, err
		}
		f, err := newFault(fv)
		if err != nil {
			return nil, err
		}
		return &Response{Value: fv, Fault: f}, nil
	}
	return nil, &MalformedResponseError{Reason: "no value node found"}
}

// ParseCall decodes an XML-RPC method call document.
func ParseCall(doc []byte) (*ProcedureCall, error) {
	mc := &methodCall{}
	if err := decodeDocument(doc, "methodCall", mc); err != nil {
		return nil, err
	}
	call := &ProcedureCall{Method: mc.MethodName, Args: Values{}}
	if mc.Params != nil {
		for i, p := range mc.Params.Param {
			if p.Value == nil {
				return nil, &MalformedResponseError{Reason: "parameter " + strconv.Itoa(i+1) + " without value"}
			}
			v, err := fromXML(p.Value)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, v)
		}
	}
	return call, nil
}

func newFault(v *Value) (*Fault, error) {
	q := Q(v)
	code := q.Key("faultCode").Int()
	msg := q.Key("faultString").String()
	if q.Err() != nil {
		return nil, &MalformedFaultError{q.Err()}
	}
	return &Fault{Code: code, Message: msg}, nil
}

// decodeDocument checks the root element and decodes the document into out.
func decodeDocument(doc []byte, root string, out interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return &MalformedResponseError{Reason: "no root element"}
		}
		if err != nil {
			return &MalformedResponseError{Reason: "invalid XML", Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != root {
			return &MalformedResponseError{Reason: "root element is " + start.Name.Local + ", expected " + root}
		}
		if err := dec.DecodeElement(out, &start); err != nil {
			return &MalformedResponseError{Reason: "invalid XML", Err: err}
		}
		return nil
	}
}

func fromXML(xv *xmlValue) (*Value, error) {
	n := xv.typeElems()
	if n == 0 {
		// assume string
		return NewString(xv.FlatString), nil
	}
	if n > 1 {
		return nil, &MalformedResponseError{Reason: "value node with multiple type elements"}
	}
	switch {
	case len(xv.Unknown) != 0:
		return nil, &UnknownTypeError{xv.Unknown[0].XMLName.Local}
	case xv.I4 != nil:
		return parseInt(*xv.I4)
	case xv.Int != nil:
		return parseInt(*xv.Int)
	case xv.Boolean != nil:
		switch strings.TrimSpace(*xv.Boolean) {
		case "1", "true":
			return NewBoolean(true), nil
		case "0", "false":
			return NewBoolean(false), nil
		}
		return nil, &MalformedResponseError{Reason: "invalid boolean: " + *xv.Boolean}
	case xv.String != nil:
		return NewString(xv.String.text), nil
	case xv.Double != nil:
		f, err := strconv.ParseFloat(strings.TrimSpace(*xv.Double), 64)
		if err != nil {
			return nil, &MalformedResponseError{Reason: "invalid double: " + *xv.Double}
		}
		v, err := NewDouble(f)
		if err != nil {
			return nil, &MalformedResponseError{Reason: "invalid double", Err: err}
		}
		return v, nil
	case xv.DateTime != nil:
		t, err := parseDateTime(*xv.DateTime)
		if err != nil {
			return nil, err
		}
		return NewDateTime(t), nil
	case xv.Array != nil:
		es := make([]*Value, len(xv.Array.Data.Values))
		for i, xe := range xv.Array.Data.Values {
			e, err := fromXML(xe)
			if err != nil {
				return nil, err
			}
			es[i] = e
		}
		return NewArray(es...), nil
	default:
		out := &Value{Kind: StructKind, Struct: []*Member{}}
		for _, xm := range xv.Struct.Members {
			if xm.Value == nil {
				return nil, &MalformedResponseError{Reason: "struct member " + xm.Name + " without value"}
			}
			mv, err := fromXML(xm.Value)
			if err != nil {
				return nil, err
			}
			out.set(xm.Name, mv)
		}
		return out, nil
	}
}

func parseInt(s string) (*Value, error) {
	// int and i4 are 32 bit
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "invalid int: " + s, Err: err}
	}
	return NewInt(int(i)), nil
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateTimeLayouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, &MalformedResponseError{Reason: "invalid dateTime.iso8601: " + s}
}
