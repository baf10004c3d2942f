package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flixlist/internal/config"
	"flixlist/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		got.body = string(body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte("nope"))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func configWithTopic(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configWithTopic(""))
	if err := svc.NotifyRunFailed(context.Background(), errors.New("x"), "fetch"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("nil config: %v", err)
	}
}

func TestNotifyRunCompleted(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	svc := notifications.NewService(configWithTopic(srv.URL + "/flixlist"))

	report := notifications.RunReport{
		Candidates: 812,
		Admitted:   64,
		Recent:     9,
		Rejected:   748,
		Overrides:  2,
		Duration:   95*time.Second + 400*time.Millisecond,
	}
	if err := svc.NotifyRunCompleted(context.Background(), report); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if got.title != "flixlist - Run Complete" || got.tags != "flixlist,run,completed" {
		t.Fatalf("headers = %+v", got)
	}
	for _, want := range []string{"64 titles (9 recent) from 812 candidates", "Overrides merged: 2", "Rejected: 748", "No content changes", "Duration: 1m35s"} {
		if !strings.Contains(got.body, want) {
			t.Fatalf("body %q missing %q", got.body, want)
		}
	}
}

func TestNotifyRunFailed(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	svc := notifications.NewService(configWithTopic(srv.URL))
	if err := svc.NotifyRunFailed(context.Background(), errors.New("no candidates"), "fetch"); err != nil {
		t.Fatal(err)
	}
	if got.body != "Run failed during fetch: no candidates" || got.priority != "high" {
		t.Fatalf("captured = %+v", got)
	}
}

func TestSendReportsHTTPErrors(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusForbidden)
	svc := notifications.NewService(configWithTopic(srv.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403: nope") {
		t.Fatalf("err = %v", err)
	}
}
