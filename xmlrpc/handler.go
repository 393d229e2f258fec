package xmlrpc

import (
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/mdzio/go-logging"
)

// max. size of a valid request, if not specified: 10 MB
const requestSizeLimit = 10 * 1024 * 1024

var svrLog = logging.Get("xmlrpc-server")

// Handler implements a http.Handler which can handle XML-RPC requests. Remote
// calls are dispatched to the registered Method's.
type Handler struct {
	RequestSizeLimit int64
	// Charset of the response documents, defaults to UTF-8.
	Charset Charset
	Dispatcher
}

func (h *Handler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	svrLog.Tracef("Request received from %s, URI %s", req.RemoteAddr, req.RequestURI)

	if req.Method != http.MethodPost {
		http.Error(resp, "Method not allowed: "+req.Method, http.StatusMethodNotAllowed)
		return
	}

	// read request
	limit := h.RequestSizeLimit
	if limit == 0 {
		limit = requestSizeLimit
	}
	reqLimitReader := http.MaxBytesReader(resp, req.Body, limit)
	reqBuf, err := ioutil.ReadAll(reqLimitReader)
	if err != nil {
		svrLog.Errorf("Reading of request failed from %s: %v", req.RemoteAddr, err)
		http.Error(resp, "Reading of request failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if svrLog.TraceEnabled() {
		svrLog.Tracef("Request XML: %s", string(reqBuf))
	}

	// decode request from xml
	call, err := ParseCall(reqBuf)
	if err != nil {
		svrLog.Errorf("Decoding of request from %s failed: %v", req.RemoteAddr, err)
		http.Error(resp, "Decoding of request failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	// dispatch call
	res, err := h.Dispatch(call.Method, NewArray(call.Args...))
	var methodResponse *Response
	if err != nil {
		svrLog.Warningf("Sending fault response to %s: %v", req.RemoteAddr, err)
		methodResponse = &Response{Fault: toFault(err)}
	} else {
		if res == nil {
			res = NewString("")
		}
		methodResponse = &Response{Value: res}
	}

	// encode response to xml
	respBuf, err := MarshalResponseCharset(methodResponse, h.Charset)
	if err != nil {
		svrLog.Errorf("Encoding of response for %s failed: %v", req.RemoteAddr, err)
		http.Error(resp, "Encoding of response failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if svrLog.TraceEnabled() {
		svrLog.Tracef("Response XML: %s", string(respBuf))
	}

	// send response, disable caching
	resp.Header().Set("Content-Type", "text/xml")
	resp.Header().Set("Content-Length", strconv.Itoa(len(respBuf)))
	resp.Header().Set("Cache-Control", "no-cache, must-revalidate, max-age=0")
	resp.Header().Set("Pragma", "no-cache")
	resp.Header().Set("Expires", "Mon, 26 Jul 1997 05:00:00 GMT")
	_, err = resp.Write(respBuf)
	if err != nil {
		svrLog.Warningf("Sending of response for %s failed: %v", req.RemoteAddr, err)
		return
	}
}

func toFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Code: -1, Message: err.Error()}
}
