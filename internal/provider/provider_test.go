package provider_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// capturedRequest is one request seen by a fake server.
type capturedRequest struct {
	Path   string
	Header http.Header
	Body   map[string]any
	Raw    []byte
}

// fakeServer replies with a fixed status and body and records every request.
type fakeServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newFakeServer(t *testing.T, status int, body string) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)
		fs.mu.Lock()
		fs.requests = append(fs.requests, capturedRequest{Path: r.URL.Path, Header: r.Header.Clone(), Body: decoded, Raw: raw})
		fs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) calls() []capturedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]capturedRequest(nil), fs.requests...)
}

func (fs *fakeServer) lastRequest(t *testing.T) capturedRequest {
	t.Helper()
	calls := fs.calls()
	require.NotEmpty(t, calls)
	return calls[len(calls)-1]
}
