package xmlrpc

import (
	"fmt"
	"sort"
	"sync"
)

// Fault codes of the dispatcher (XML-RPC fault code interoperability).
const (
	FaultUnknownMethod = -32601
	FaultInvalidParams = -32602
)

// Dispatcher dispatches a received XML-RPC call to registered handlers.
type Dispatcher interface {
	AddSystemMethods()
	Handle(name string, m Method)
	HandleFunc(name string, f func(*Value) (*Value, error))
	HandleUnknownFunc(f func(string, *Value) (*Value, error))
	Dispatch(methodName string, args *Value) (*Value, error)
}

// A Method is dispatched from a Handler. The argument contains always an array.
// A returned *Fault is sent with its code, other errors with code -1.
type Method interface {
	Call(*Value) (*Value, error)
}

// Helper is optionally implemented by a Method to provide the text of
// system.methodHelp.
type Helper interface {
	Help() string
}

// MethodFunc is an adapter to use ordinary functions as Method's.
type MethodFunc func(*Value) (*Value, error)

// Call implements interface Method.
func (m MethodFunc) Call(args *Value) (*Value, error) {
	return m(args)
}

// HelpMethod attaches a help text to a method.
type HelpMethod struct {
	Method
	Text string
}

// Help implements Helper.
func (h *HelpMethod) Help() string {
	return h.Text
}

// BasicDispatcher dispatches an XML-RPC call to a registered Method. Calls of
// unregistered methods are answered with a fault FaultUnknownMethod, unless a
// handler for unknown methods is set.
type BasicDispatcher struct {
	mutex   sync.RWMutex
	methods map[string]Method
	unknown func(string, *Value) (*Value, error)
}

// Handle registers a Method. A previous registration with the same name is
// replaced.
func (d *BasicDispatcher) Handle(name string, m Method) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.methods == nil {
		d.methods = make(map[string]Method)
	}
	d.methods[name] = m
}

// HandleFunc registers an ordinary function as Method.
func (d *BasicDispatcher) HandleFunc(name string, f func(*Value) (*Value, error)) {
	d.Handle(name, MethodFunc(f))
}

// HandleUnknownFunc sets the handler for unregistered method names.
func (d *BasicDispatcher) HandleUnknownFunc(f func(string, *Value) (*Value, error)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.unknown = f
}

// Methods returns the sorted names of the registered methods.
func (d *BasicDispatcher) Methods() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *BasicDispatcher) lookup(name string) (Method, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	m, ok := d.methods[name]
	return m, ok
}

// AddSystemMethods adds system.listMethods and system.methodHelp.
// system.multicall is not supported.
func (d *BasicDispatcher) AddSystemMethods() {
	d.Handle("system.listMethods", &HelpMethod{
		Method: MethodFunc(func(*Value) (*Value, error) {
			names := d.Methods()
			vs := make([]*Value, len(names))
			for i, n := range names {
				vs[i] = NewString(n)
			}
			return NewArray(vs...), nil
		}),
		Text: "Returns the names of all methods.",
	})
	d.Handle("system.methodHelp", &HelpMethod{
		Method: MethodFunc(func(args *Value) (*Value, error) {
			q := Q(args)
			name := q.Idx(0).String()
			if q.Err() != nil || len(args.Array) != 1 {
				return nil, &Fault{Code: FaultInvalidParams, Message: "Expected method name as single parameter"}
			}
			m, ok := d.lookup(name)
			if !ok {
				return nil, unknownMethod(name)
			}
			// methods without help text answer an empty string
			if h, ok := m.(Helper); ok {
				return NewString(h.Help()), nil
			}
			return NewString(""), nil
		}),
		Text: "Returns the help text of a method.",
	})
}

// Dispatch calls the Method registered under methodName.
func (d *BasicDispatcher) Dispatch(methodName string, args *Value) (*Value, error) {
	method, ok := d.lookup(methodName)
	if ok {
		svrLog.Debugf("Dispatching call of method %s", methodName)
		return method.Call(args)
	}
	d.mutex.RLock()
	unknown := d.unknown
	d.mutex.RUnlock()
	if unknown != nil {
		return unknown(methodName, args)
	}
	return nil, unknownMethod(methodName)
}

func unknownMethod(name string) *Fault {
	return &Fault{Code: FaultUnknownMethod, Message: fmt.Sprintf("Unknown method: %s", name)}
}
