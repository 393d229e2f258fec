package xmlrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
)

// max. size of a valid response, if not specified: 10 MB
const responseSizeLimit = 10 * 1024 * 1024

// Transport sends a request document and returns the response document. The
// codec does not know, how the bytes are transferred.
type Transport interface {
	Post(ctx context.Context, body []byte, header http.Header) ([]byte, error)
}

// TransportFunc is an adapter to use ordinary functions as Transport's.
type TransportFunc func(ctx context.Context, body []byte, header http.Header) ([]byte, error)

// Post implements interface Transport.
func (f TransportFunc) Post(ctx context.Context, body []byte, header http.Header) ([]byte, error) {
	return f(ctx, body, header)
}

// HTTPTransport posts requests to an XML-RPC server.
type HTTPTransport struct {
	Addr              string
	ResponseSizeLimit int64
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Post implements Transport.
func (t *HTTPTransport) Post(ctx context.Context, body []byte, header http.Header) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, t.Addr, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("Creating of HTTP request for %s failed: %w", t.Addr, err)
	}
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "text/xml")
	}

	// http post
	cln := t.Client
	if cln == nil {
		cln = http.DefaultClient
	}
	httpResp, err := cln.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed on %s: %w", t.Addr, err)
	}
	defer httpResp.Body.Close()

	// check status
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP request failed on %s with code: %s", t.Addr, httpResp.Status)
	}

	// read response, one byte more to detect an exceeded limit
	limit := t.ResponseSizeLimit
	if limit == 0 {
		limit = responseSizeLimit
	}
	limitReader := io.LimitReader(httpResp.Body, limit+1)
	respBuf, err := ioutil.ReadAll(limitReader)
	if err != nil {
		return nil, fmt.Errorf("Reading of response failed from %s: %w", t.Addr, err)
	}
	if int64(len(respBuf)) > limit {
		return nil, fmt.Errorf("Response from %s exceeds size limit of %d bytes", t.Addr, limit)
	}
	return respBuf, nil
}
