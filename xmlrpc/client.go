package xmlrpc

import (
	"context"
	"net/http"

	"github.com/mdzio/go-logging"
)

// DefaultUserAgent is sent, if no user agent is configured.
const DefaultUserAgent = "XML-RPC Go"

var clnLog = logging.Get("xmlrpc-client")

// Caller is an interface for calling XML-RPC functions synchronously.
type Caller interface {
	Call(ctx context.Context, method string, params Values) (*Value, error)
}

// Client issues asynchronous XML-RPC calls over a Transport.
type Client struct {
	Transport Transport
	UserAgent string
	// Charset of the request documents, defaults to UTF-8.
	Charset Charset
	// Debug logs all request and response documents with level DEBUG.
	Debug bool
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the value of the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// WithDebug enables the logging of request and response documents.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.Debug = debug }
}

// WithCharset sets the character encoding of the requests.
func WithCharset(cs Charset) Option {
	return func(c *Client) { c.Charset = cs }
}

// NewClient creates a client for the specified transport.
func NewClient(t Transport, opts ...Option) *Client {
	c := &Client{Transport: t, UserAgent: DefaultUserAgent}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CallProcedure starts a call of the remote procedure name and returns
// immediately. args are converted with NewValue or, if types are specified
// (one for each argument), with NewTypedValue. Conversion and encoding errors
// are returned directly and cb is not invoked. Otherwise cb is invoked exactly
// once from another goroutine, when the call is completed.
func (c *Client) CallProcedure(ctx context.Context, name string, cb Callback, args []interface{}, types ...Type) (*Call, error) {
	if len(types) == 0 {
		types = nil
	}
	pc, err := NewProcedureCall(name, args, types)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, pc, cb)
}

// Send starts the specified procedure call. See CallProcedure.
func (c *Client) Send(ctx context.Context, pc *ProcedureCall, cb Callback) (*Call, error) {
	clnLog.Tracef("Calling method %s with parameters %v", pc.Method, pc.Args)
	doc, err := MarshalCallCharset(pc, c.Charset)
	if err != nil {
		return nil, err
	}
	logDocument(c.Debug, "Request XML", doc)

	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	header := http.Header{}
	header.Set("Content-Type", "text/xml")
	header.Set("User-Agent", ua)

	call := newCall(pc.Method, doc, header)
	call.send(ctx, c.Transport, c.Debug, cb)
	return call, nil
}

// Call executes a remote procedure call and waits for the result. A fault is
// returned as *Fault error. Call implements Caller.
func (c *Client) Call(ctx context.Context, method string, params Values) (*Value, error) {
	if params == nil {
		params = Values{}
	}
	call, err := c.Send(ctx, &ProcedureCall{Method: method, Args: params}, nil)
	if err != nil {
		return nil, err
	}
	resp, err := call.Wait()
	if err != nil {
		return nil, err
	}
	if resp.Faulted() {
		return nil, resp.Fault
	}
	return resp.Value, nil
}

func logDocument(debug bool, what string, doc []byte) {
	if debug {
		clnLog.Debugf("%s: %s", what, string(doc))
	} else if clnLog.TraceEnabled() {
		// attention: log message is probably ISO8859-1 encoded!
		clnLog.Tracef("%s: %s", what, string(doc))
	}
}
