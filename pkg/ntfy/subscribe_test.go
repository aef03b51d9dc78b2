package ntfy_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"chime/pkg/ntfy"
)

func TestSubscribeYieldsMessagesInOrderUntilEOF(t *testing.T) {
	lines := []string{
		`{"id":"evt0","time":1700000000,"event":"open","topic":"builds"}`,
		`{"id":"evt1","time":1700000001,"event":"message","topic":"builds","message":"first"}`,
		`{"id":"evt2","time":1700000002,"event":"keepalive","topic":"builds"}`,
		`{"id":"evt3","time":1700000003,"event":"message","topic":"builds","message":"second","title":"Build","priority":4,"tags":["ok"]}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/builds/json" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("builds"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var got []ntfy.Message
	for msg, err := range client.Subscribe(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		got = append(got, msg)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 message events, got %d", len(got))
	}
	if got[0].Message != "first" || got[1].Message != "second" {
		t.Fatalf("messages out of order: %q then %q", got[0].Message, got[1].Message)
	}
	if got[1].Title != "Build" || got[1].Priority != 4 {
		t.Fatalf("message fields not decoded: %+v", got[1])
	}
}

func TestSubscribeStopsWhenConsumerBreaks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; ; i++ {
			_, err := fmt.Fprintf(w, `{"id":"m%d","time":1700000000,"event":"message","topic":"builds","message":"m%d"}`+"\n", i, i)
			if err != nil {
				return
			}
			flusher.Flush()
		}
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("builds"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	count := 0
	for _, err := range client.Subscribe(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Fatalf("expected to stop after 3 messages, got %d", count)
	}
}

func TestSubscribePassesSinceAndScheduled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("since"); got != "30m" {
			t.Fatalf("unexpected since param: %q", got)
		}
		if got := r.URL.Query().Get("sched"); got != "1" {
			t.Fatalf("unexpected sched param: %q", got)
		}
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("builds"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for _, err := range client.Subscribe(context.Background(), ntfy.WithSince("30m"), ntfy.WithScheduled()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
	}
}

func TestSubscribeSurfacesHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("builds"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var streamErr error
	for _, err := range client.Subscribe(context.Background()) {
		streamErr = err
	}
	var statusErr *ntfy.StatusError
	if !errors.As(streamErr, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", streamErr)
	}
}

func TestSubscribeSurfacesMalformedStreamData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "this is not json")
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("builds"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var streamErr error
	for _, err := range client.Subscribe(context.Background()) {
		streamErr = err
	}
	if !errors.Is(streamErr, ntfy.ErrStream) {
		t.Fatalf("expected ErrStream, got %v", streamErr)
	}
}

func TestSubscribeSSEFiltersFramingLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/builds/sse" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprintln(w, "event: open")
		fmt.Fprintln(w, `data: {"id":"e1","time":1700000000,"event":"open","topic":"builds"}`)
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "event: message")
		fmt.Fprintln(w, `data: {"id":"e2","time":1700000001,"event":"message","topic":"builds","message":"hello"}`)
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("builds"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var got []ntfy.Message
	for msg, err := range client.Subscribe(context.Background(), ntfy.WithTransport(ntfy.TransportSSE)) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		got = append(got, msg)
	}
	if len(got) != 1 || got[0].Message != "hello" {
		t.Fatalf("expected single sse message, got %+v", got)
	}
}

func TestSubscribeWebSocketTransport(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/builds/ws" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		frames := []string{
			`{"id":"w0","time":1700000000,"event":"open","topic":"builds"}`,
			`{"id":"w1","time":1700000001,"event":"message","topic":"builds","message":"over websocket"}`,
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	client, err := ntfy.New(ntfy.WithServer(server.URL), ntfy.WithTopic("builds"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var got []ntfy.Message
	for msg, err := range client.Subscribe(context.Background(), ntfy.WithTransport(ntfy.TransportWS)) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		got = append(got, msg)
	}
	if len(got) != 1 || got[0].Message != "over websocket" {
		t.Fatalf("expected single websocket message, got %+v", got)
	}
}
