package ntfy_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"chime/pkg/ntfy"
)

type captureServer struct {
	mu     sync.Mutex
	bodies []string
	prios  []string
}

func newCaptureServer(t *testing.T) (*captureServer, *ntfy.Client, func()) {
	t.Helper()
	capture := &captureServer{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		capture.mu.Lock()
		capture.bodies = append(capture.bodies, string(body))
		capture.prios = append(capture.prios, r.Header.Get("Priority"))
		capture.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("jobs"))
	if err != nil {
		server.Close()
		t.Fatalf("New returned error: %v", err)
	}
	return capture, client, server.Close
}

func TestWrapPublishesOnceAfterSuccess(t *testing.T) {
	capture, client, done := newCaptureServer(t)
	defer done()

	order := make([]string, 0, 2)
	wrapped := client.Wrap(func(ctx context.Context) error {
		order = append(order, "fn")
		return nil
	}, "backup finished")

	if err := wrapped(context.Background()); err != nil {
		t.Fatalf("wrapped call returned error: %v", err)
	}
	order = append(order, "returned")

	if len(capture.bodies) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(capture.bodies))
	}
	if capture.bodies[0] != "backup finished" {
		t.Fatalf("unexpected notification body: %q", capture.bodies[0])
	}
	if order[0] != "fn" {
		t.Fatal("expected fn to run before notification")
	}
}

func TestWrapPreservesErrorAndNotifiesAtHighPriority(t *testing.T) {
	capture, client, done := newCaptureServer(t)
	defer done()

	boom := errors.New("disk full")
	wrapped := client.Wrap(func(ctx context.Context) error {
		return boom
	}, "backup finished")

	err := wrapped(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error to pass through, got %v", err)
	}

	if len(capture.bodies) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(capture.bodies))
	}
	if !strings.Contains(capture.bodies[0], "disk full") {
		t.Fatalf("expected failure body to carry the error, got %q", capture.bodies[0])
	}
	if capture.prios[0] != "4" {
		t.Fatalf("expected high priority on failure, got %q", capture.prios[0])
	}
}

func TestWrapReportsPublishFailureWhenFnSucceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("jobs"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	wrapped := client.Wrap(func(ctx context.Context) error { return nil }, "done")
	err = wrapped(context.Background())
	if !errors.Is(err, ntfy.ErrTransport) {
		t.Fatalf("expected transport error from publish, got %v", err)
	}
}

func TestNotifyPassesValueThrough(t *testing.T) {
	capture, client, done := newCaptureServer(t)
	defer done()

	value, err := ntfy.Notify(context.Background(), client, "sum computed", func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if value != 42 {
		t.Fatalf("expected value 42, got %d", value)
	}
	if len(capture.bodies) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(capture.bodies))
	}
}

func TestNotifyPreservesValueAndErrorOnFailure(t *testing.T) {
	capture, client, done := newCaptureServer(t)
	defer done()

	boom := errors.New("no data")
	value, err := ntfy.Notify(context.Background(), client, "sum computed", func() (int, error) {
		return 7, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if value != 7 {
		t.Fatalf("expected value to pass through, got %d", value)
	}
	if len(capture.bodies) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(capture.bodies))
	}
}
