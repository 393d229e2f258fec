package xmlrpc

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// ProcedureCall is a method name with its parameters.
type ProcedureCall struct {
	Method string
	Args   Values
}

// NewProcedureCall converts native arguments into a ProcedureCall. If types is
// not nil, it must have the same length as args and the type of each argument
// is taken from it instead of InferType.
func NewProcedureCall(method string, args []interface{}, types []Type) (*ProcedureCall, error) {
	if err := checkMethodName(method); err != nil {
		return nil, err
	}
	if types != nil && len(types) != len(args) {
		return nil, fmt.Errorf("Number of types (%d) does not match number of arguments (%d)", len(types), len(args))
	}
	call := &ProcedureCall{Method: method, Args: make(Values, len(args))}
	for i, a := range args {
		var v *Value
		var err error
		if types != nil {
			v, err = NewTypedValue(a, types[i])
		} else {
			v, err = NewValue(a)
		}
		if err != nil {
			return nil, fmt.Errorf("Parameter %d of %s: %w", i+1, method, err)
		}
		call.Args[i] = v
	}
	return call, nil
}

// Response is the decoded result of a call. If the remote procedure reported an
// error, Fault is set and Value holds the fault struct.
type Response struct {
	Value *Value
	Fault *Fault
}

// Faulted returns true for a fault response.
func (r *Response) Faulted() bool {
	return r.Fault != nil
}

// State of a Call.
type State int

// States of a Call. Succeeded, Failed and Faulted are terminal.
const (
	Idle State = iota
	Sent
	Succeeded
	Failed
	Faulted
)

var stateNames = [...]string{"Idle", "Sent", "Succeeded", "Failed", "Faulted"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Callback receives the outcome of a call. On success and on a fault, resp is
// set and err is nil. If the call could not be completed (transport error or
// undecodable response), resp is nil and err is set.
type Callback func(resp *Response, err error)

// Call is a single in-flight remote procedure call.
type Call struct {
	method string
	doc    []byte
	header http.Header

	mutex sync.Mutex
	state State
	resp  *Response
	err   error
	done  chan struct{}
}

func newCall(method string, doc []byte, header http.Header) *Call {
	return &Call{
		method: method,
		doc:    doc,
		header: header,
		done:   make(chan struct{}),
	}
}

// Method returns the name of the called method.
func (c *Call) Method() string {
	return c.method
}

// State returns the current state.
func (c *Call) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Done is closed, when the call reaches a terminal state.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call is completed and returns its outcome.
func (c *Call) Wait() (*Response, error) {
	<-c.done
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.resp, c.err
}

// send moves the call to state Sent and runs the transport asynchronously.
func (c *Call) send(ctx context.Context, t Transport, debug bool, cb Callback) {
	c.mutex.Lock()
	c.state = Sent
	c.mutex.Unlock()

	go func() {
		body, err := t.Post(ctx, c.doc, c.header)
		// request is not needed anymore
		c.doc = nil
		if err != nil {
			c.complete(Failed, nil, &TransportError{err}, cb)
			return
		}
		logDocument(debug, "Response XML", body)
		resp, err := ParseResponse(body)
		if err != nil {
			c.complete(Failed, nil, fmt.Errorf("Decoding of response for %s failed: %w", c.method, err), cb)
			return
		}
		if resp.Faulted() {
			c.complete(Faulted, resp, nil, cb)
			return
		}
		c.complete(Succeeded, resp, nil, cb)
	}()
}

func (c *Call) complete(s State, resp *Response, err error, cb Callback) {
	c.mutex.Lock()
	c.state = s
	c.resp = resp
	c.err = err
	c.mutex.Unlock()

	switch s {
	case Failed:
		clnLog.Debugf("Call of method %s failed: %v", c.method, err)
	case Faulted:
		clnLog.Debugf("Call of method %s returned fault: %v", c.method, resp.Fault)
	default:
		clnLog.Tracef("Result of method %s: %v", c.method, resp.Value)
	}
	if cb != nil {
		cb(resp, err)
	}
	close(c.done)
}
