package xmlrpc

import (
	"context"
	"net/http"
	"time"

	"github.com/mdzio/go-lib/conc"
)

// RetryingTransport repeats failed posts. Only transport errors are retried; a
// fault is a valid response document and is passed through.
type RetryingTransport struct {
	// Transport that is called multiple times if it returns an error.
	Transport Transport

	// Number of retries. 0 disables retries.
	RetryCount int

	// Delay between retries.
	RetryDelay time.Duration

	// The repeated posts can be cancelled with this context. If nil, the
	// context of the request is used.
	Context conc.Context
}

// Post implements Transport.
func (t *RetryingTransport) Post(ctx context.Context, body []byte, header http.Header) ([]byte, error) {
	// retry counter
	rcnt := 0
	for {
		// try a post
		resp, err := t.Transport.Post(ctx, body, header)
		// on success, return response
		if err == nil {
			return resp, nil
		}
		// give up when the retries have been used up
		rcnt++
		if rcnt > t.RetryCount {
			return nil, err
		}
		clnLog.Debugf("Post failed, retry in %s: %v", t.RetryDelay, err)
		// wait before the next post
		if errc := t.sleep(ctx); errc != nil {
			// return last error
			return nil, err
		}
	}
}

func (t *RetryingTransport) sleep(ctx context.Context) error {
	if t.Context != nil {
		return t.Context.Sleep(t.RetryDelay)
	}
	if ctx == nil {
		time.Sleep(t.RetryDelay)
		return nil
	}
	timer := time.NewTimer(t.RetryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
