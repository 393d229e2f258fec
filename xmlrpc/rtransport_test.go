package xmlrpc

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mdzio/go-lib/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingTransport fails the first n posts.
type failingTransport struct {
	n     int
	posts int
	resp  []byte
	post  chan struct{}
}

func (f *failingTransport) Post(context.Context, []byte, http.Header) ([]byte, error) {
	f.posts++
	if f.post != nil {
		f.post <- struct{}{}
	}
	if f.posts <= f.n {
		return nil, errors.New("connection refused")
	}
	return f.resp, nil
}

func TestRetryingTransport(t *testing.T) {
	ft := &failingTransport{n: 2, resp: []byte("ok")}
	rt := &RetryingTransport{Transport: ft, RetryCount: 2, RetryDelay: time.Millisecond}
	resp, err := rt.Post(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp))
	assert.Equal(t, 3, ft.posts)

	ft = &failingTransport{n: 10}
	rt = &RetryingTransport{Transport: ft, RetryCount: 3, RetryDelay: time.Millisecond}
	_, err = rt.Post(context.Background(), nil, nil)
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 4, ft.posts)

	ft = &failingTransport{n: 10}
	rt = &RetryingTransport{Transport: ft}
	_, err = rt.Post(context.Background(), nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, ft.posts)
}

func TestRetryingTransport_Fault(t *testing.T) {
	ft := &failingTransport{resp: []byte(
		"<methodResponse><fault><value><struct>" +
			"<member><name>faultCode</name><value><int>4</int></value></member>" +
			"<member><name>faultString</name><value><string>Too many parameters.</string></value></member>" +
			"</struct></value></fault></methodResponse>",
	)}
	cln := NewClient(&RetryingTransport{Transport: ft, RetryCount: 3, RetryDelay: time.Millisecond})
	_, err := cln.Call(context.Background(), "m", nil)
	var f *Fault
	if assert.True(t, errors.As(err, &f)) {
		assert.Equal(t, 4, f.Code)
	}
	assert.Equal(t, 1, ft.posts)
}

func TestRetryingTransport_Context(t *testing.T) {
	ft := &failingTransport{n: 10}
	rt := &RetryingTransport{Transport: ft, RetryCount: 3, RetryDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	_, err := rt.Post(ctx, nil, nil)
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 1, ft.posts)
	assert.True(t, time.Since(start) < time.Minute)
}

func TestRetryingTransport_DaemonContext(t *testing.T) {
	ft := &failingTransport{n: 10, post: make(chan struct{}, 10)}
	result := make(chan error, 1)
	stop := conc.DaemonFunc(func(ctx conc.Context) {
		rt := &RetryingTransport{Transport: ft, RetryCount: 3, RetryDelay: time.Hour, Context: ctx}
		_, err := rt.Post(context.Background(), nil, nil)
		result <- err
	})

	// wait for first post, then stop the daemon while it sleeps
	<-ft.post
	stop()
	select {
	case err := <-result:
		assert.EqualError(t, err, "connection refused")
	case <-time.After(10 * time.Second):
		t.Fatal("retries not cancelled")
	}
	assert.Equal(t, 1, ft.posts)
}
