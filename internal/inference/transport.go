package inference

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

type callKey struct{}

// callRecord captures the last HTTP status seen for one client call.
type callRecord struct {
	status atomic.Int32
}

func withCallRecord(ctx context.Context) (context.Context, *callRecord) {
	rec := &callRecord{}
	return context.WithValue(ctx, callKey{}, rec), rec
}

// failure reports an error status that the ollama client let through, which
// happens when the error response carries no body.
func (r *callRecord) failure() error {
	if st := r.status.Load(); st >= 400 {
		return fmt.Errorf("inference server returned status %d", st)
	}
	return nil
}

// statusTransport records upstream response codes into the request's
// callRecord so errors can be classified by status regardless of how the
// ollama client surfaces them.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if resp != nil {
		if rec, ok := req.Context().Value(callKey{}).(*callRecord); ok {
			rec.status.Store(int32(resp.StatusCode))
		}
	}
	return resp, err
}

// newHTTPClient builds the pooled client used for all backend calls.
// Timeout stays 0: every call carries a context deadline instead.
func newHTTPClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: statusTransport{next: tr}, Timeout: 0}
}
