package xmlrpc

import (
	"fmt"
	"strconv"
)

// Fault encapsulates an XML-RPC fault response.
type Fault struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("XML-RPC fault (code: %d, message: %s)", f.Code, f.Message)
}

// UnsupportedTypeError is returned, if a native value has no XML-RPC
// representation.
type UnsupportedTypeError struct {
	Value interface{}
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("Conversion of type %[1]T with value %[1]v is not supported", e.Value)
}

// InvalidIntegerError is returned, if a value typed as int is not integral or
// does not fit into 32 bit.
type InvalidIntegerError struct {
	Value interface{}
}

func (e *InvalidIntegerError) Error() string {
	return fmt.Sprintf("Invalid int: %v", e.Value)
}

// InvalidDoubleError is returned for NaN and infinite doubles.
type InvalidDoubleError struct {
	Value float64
}

func (e *InvalidDoubleError) Error() string {
	return "Invalid double (NaN or infinity): " + strconv.FormatFloat(e.Value, 'g', -1, 64)
}

// MalformedResponseError is returned, if a document is not a valid XML-RPC
// document.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Malformed XML-RPC document: %s: %v", e.Reason, e.Err)
	}
	return "Malformed XML-RPC document: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// UnknownTypeError is returned, if a value element contains an unknown type
// tag.
type UnknownTypeError struct {
	Tag string
}

func (e *UnknownTypeError) Error() string {
	return "Unknown XML-RPC type: " + e.Tag
}

// MalformedFaultError is returned, if a fault struct misses faultCode or
// faultString or they have the wrong type.
type MalformedFaultError struct {
	Err error
}

func (e *MalformedFaultError) Error() string {
	return fmt.Sprintf("Invalid XML-RPC fault response: %v", e.Err)
}

func (e *MalformedFaultError) Unwrap() error { return e.Err }

// TransportError wraps an error of the transport, e.g. a network failure or a
// non 2xx HTTP status.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "Transport failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidMethodNameError is returned for method names, that contain characters
// outside of A-Z, a-z, 0-9, underscore, dot, colon and slash.
type InvalidMethodNameError struct {
	Name string
}

func (e *InvalidMethodNameError) Error() string {
	return "Invalid method name: " + strconv.Quote(e.Name)
}
