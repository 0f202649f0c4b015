package device

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeDoer struct {
	mu        sync.Mutex
	attempts  int
	responses []fakeResponse
}

type fakeResponse struct {
	status int
	body   string
	err    error
	block  bool
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	idx := f.attempts
	f.attempts++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	f.mu.Unlock()

	if resp.block {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(resp.body))),
	}, nil
}

func (f *fakeDoer) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func newTestClient(doer HTTPDoer) *Client {
	return NewClient(doer, 50*time.Millisecond, 2, time.Millisecond, zap.NewNop())
}

func TestClientRetriesThenSucceeds(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{status: http.StatusOK, body: `{"ok":true}`},
	}}
	client := newTestClient(doer)

	status, body, err := client.Do(context.Background(), http.MethodGet, "http://192.168.1.5/sensor-data", nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body = %q", body)
	}
	if got := doer.attemptCount(); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestClientExhaustsRetryBudget(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{err: errors.New("connection refused")},
	}}
	client := newTestClient(doer)

	_, _, err := client.Do(context.Background(), http.MethodGet, "http://192.168.1.5/sensor-data", nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := doer.attemptCount(); got != 3 {
		t.Fatalf("attempts = %d, want 3 (1 + 2 retries)", got)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Code != CodeNetworkError {
		t.Fatalf("code = %q, want %q", apiErr.Code, CodeNetworkError)
	}
}

func TestClientTimesOutPerAttempt(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{{block: true}}}
	client := NewClient(doer, 10*time.Millisecond, 1, time.Millisecond, zap.NewNop())

	start := time.Now()
	_, _, err := client.Do(context.Background(), http.MethodGet, "http://192.168.1.5/sensor-data", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Code != CodeTimeoutError {
		t.Fatalf("code = %q, want %q", apiErr.Code, CodeTimeoutError)
	}
	if got := doer.attemptCount(); got != 2 {
		t.Fatalf("attempts = %d, want 2 (1 + 1 retry)", got)
	}
}

func TestClientDoesNotRetryNonTransportFailures(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: http.StatusInternalServerError, body: "boom"},
	}}
	client := newTestClient(doer)

	status, _, err := client.Do(context.Background(), http.MethodGet, "http://192.168.1.5/sensor-data", nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if got := doer.attemptCount(); got != 1 {
		t.Fatalf("attempts = %d, want 1: non-2xx must not consume retries", got)
	}
}

func TestClientStopsWhenContextCancelled(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{err: errors.New("connection refused")},
	}}
	client := NewClient(doer, 50*time.Millisecond, 2, 50*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.Do(ctx, http.MethodGet, "http://192.168.1.5/sensor-data", nil)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if got := doer.attemptCount(); got > 1 {
		t.Fatalf("attempts = %d, want at most 1 after cancellation", got)
	}
}
