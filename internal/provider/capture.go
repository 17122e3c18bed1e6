package provider

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// exchange holds what the server actually sent for one call.
type exchange struct {
	mu     sync.Mutex
	status int
	body   []byte
	err    error
}

func (x *exchange) record(status int, body []byte, err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.status, x.body, x.err = status, body, err
}

func (x *exchange) snapshot() (int, []byte, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.status, x.body, x.err
}

// recordingTransport buffers each response body so failures can be classified
// from the raw status and bytes, then hands the SDK an identical body.
type recordingTransport struct {
	base http.RoundTripper
	ex   *exchange
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.ex.record(0, nil, err)
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.ex.record(0, nil, err)
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	t.ex.record(resp.StatusCode, body, nil)
	return resp, nil
}

// recordingClient returns a copy of base whose transport records into a fresh exchange.
func recordingClient(base *http.Client) (*http.Client, *exchange) {
	if base == nil {
		base = http.DefaultClient
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	ex := &exchange{}
	c := *base
	c.Transport = &recordingTransport{base: rt, ex: ex}
	return &c, ex
}

// classify maps an SDK error to the taxonomy using the recorded exchange.
func classify(sdkErr error, ex *exchange) error {
	status, body, rtErr := ex.snapshot()
	switch {
	case rtErr != nil:
		return &TransportError{Err: rtErr}
	case status == 0:
		return &TransportError{Err: sdkErr}
	case status < 200 || status > 299:
		return newProtocolError(status, body)
	default:
		return &DecodeError{Err: sdkErr, Raw: string(body)}
	}
}
