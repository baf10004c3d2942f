package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flixlist/internal/config"
)

const userAgent = "flixlist/1.0"

// RunReport carries the figures included in a completion notice.
type RunReport struct {
	Candidates int
	Admitted   int
	Recent     int
	Rejected   int
	Overrides  int
	Changed    bool
	Duration   time.Duration
}

// Service defines the notification surface used by the pipeline.
type Service interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyRunFailed(ctx context.Context, err error, stage string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topicURL(topic),
		client:   &http.Client{Timeout: timeout},
	}
}

// A bare topic name is published on ntfy.sh.
func topicURL(topic string) string {
	if strings.HasPrefix(topic, "http://") || strings.HasPrefix(topic, "https://") {
		return topic
	}
	return "https://ntfy.sh/" + strings.TrimPrefix(topic, "/")
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	duration := report.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Catalog updated: %d titles (%d recent) from %d candidates", report.Admitted, report.Recent, report.Candidates)
	if report.Overrides > 0 {
		fmt.Fprintf(&b, "\nOverrides merged: %d", report.Overrides)
	}
	fmt.Fprintf(&b, "\nRejected: %d", report.Rejected)
	if !report.Changed {
		b.WriteString("\nNo content changes")
	}
	fmt.Fprintf(&b, "\nDuration: %s", duration)

	return n.send(ctx, payload{
		title:   "flixlist - Run Complete",
		message: b.String(),
		tags:    []string{"flixlist", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, err error, stage string) error {
	var builder strings.Builder
	builder.WriteString("Run failed")
	if stage = strings.TrimSpace(stage); stage != "" {
		builder.WriteString(" during ")
		builder.WriteString(stage)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "flixlist - Run Failed",
		message:  builder.String(),
		tags:     []string{"flixlist", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "flixlist - Test",
		message:  "Notification system test",
		tags:     []string{"flixlist", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunReport) error   { return nil }
func (noopService) NotifyRunFailed(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
