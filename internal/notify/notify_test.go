// SPDX-License-Identifier: MPL-2.0

package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"switchyard-cli/internal/notify"
)

func TestHTTPNotifierPostsEvent(t *testing.T) {
	t.Parallel()

	received := make(chan notify.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev notify.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("sink received invalid JSON: %v", err)
		}
		received <- ev
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := notify.NewHTTPNotifier(srv.URL, time.Second, nil)
	n.NotifyFailure(context.Background(), notify.Event{
		InvocationID: "inv-1",
		BranchName:   "flow",
		Outcome:      "timeout",
		DurationMS:   30000,
		Timestamp:    time.Now(),
	})

	select {
	case ev := <-received:
		if ev.Outcome != "timeout" || ev.BranchName != "flow" {
			t.Errorf("sink event = %+v, want timeout/flow", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the event")
	}
}

func TestNotifyFailureSwallowsDeliveryErrors(t *testing.T) {
	t.Parallel()

	// Port 1 refuses connections; the call must return without panic.
	n := notify.NewHTTPNotifier("http://127.0.0.1:1/events", 100*time.Millisecond, nil)
	n.NotifyFailure(context.Background(), notify.Event{InvocationID: "inv-2"})
}

func TestEmptySinkIsNop(t *testing.T) {
	t.Parallel()

	n := notify.NewHTTPNotifier("", time.Second, nil)
	if _, ok := n.(notify.NopNotifier); !ok {
		t.Errorf("NewHTTPNotifier(\"\") = %T, want NopNotifier", n)
	}
}

func TestSummarizeArgvRedactsSecrets(t *testing.T) {
	t.Parallel()

	got := notify.SummarizeArgv([]string{"create", "--api-token=abc123", "PASSWORD=hunter2", "Title"})
	want := "create --api-token=*** PASSWORD=*** Title"
	if got != want {
		t.Errorf("SummarizeArgv() = %q, want %q", got, want)
	}
}
