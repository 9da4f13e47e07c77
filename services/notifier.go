package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"service-center/config"
	"service-center/models"
	"service-center/monitoring"
	"service-center/utils"
)

// Sink receives shaped webhook payloads. The store depends on this interface
// so tests can record what would have been sent.
type Sink interface {
	Dispatch(payload models.WebhookPayload)
}

// Notifier pushes flat key-value payloads to the configured automation
// endpoint. Sends are fire-and-forget: the caller-visible operation has
// already succeeded by the time the request leaves, transport errors are
// swallowed, and the HTTP status code is never inspected. Only the explicit
// health-check and heartbeat paths feed the connectivity indicator.
type Notifier struct {
	urlFn   func(ctx context.Context) string
	hc      *http.Client
	conn    *utils.ConnState
	monitor *monitoring.Monitor

	wg sync.WaitGroup
}

func NewNotifier(urlFn func(ctx context.Context) string, conn *utils.ConnState, monitor *monitoring.Monitor) *Notifier {
	return &Notifier{
		urlFn: urlFn,

		// No timeout: a hung request simply never resolves, matching the
		// dispatch contract. Health checks bound their own context.
		hc:      &http.Client{},
		conn:    conn,
		monitor: monitor,
	}
}

// Dispatch sends the payload on a background goroutine and never reports the
// outcome to the caller. An offline endpoint means the event is lost.
func (n *Notifier) Dispatch(payload models.WebhookPayload) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.Send(context.Background(), payload); err != nil {
			slog.Debug("webhook dispatch failed", "action", payload.WebhookAction(), "error", err)
		}
	}()
}

// Send posts the payload and returns an error only when the round trip
// itself fails. A 4xx/5xx response still counts as sent; the external
// automation flow depends on that looseness for re-fired completion rows.
func (n *Notifier) Send(ctx context.Context, payload models.WebhookPayload) error {
	action := payload.WebhookAction()

	url := n.urlFn(ctx)
	if url == "" {
		n.monitor.TrackWebhookSend(action, "skipped")
		return fmt.Errorf("webhook url not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.monitor.TrackWebhookSend(action, "marshal_error")
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.hc.Do(req)
	if err != nil {
		n.monitor.TrackWebhookSend(action, "transport_error")
		return fmt.Errorf("send %s: %w", action, err)
	}
	defer resp.Body.Close()

	n.monitor.TrackWebhookSend(action, "sent")
	return nil
}

// Flush blocks until all in-flight dispatches have resolved.
func (n *Notifier) Flush() {
	n.wg.Wait()
}

// HealthCheck sends a HEALTH_CHECK payload synchronously and updates the
// tri-state connectivity indicator. This is the only send path whose failure
// is surfaced to a caller.
func (n *Notifier) HealthCheck(ctx context.Context, client string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := n.Send(ctx, models.BuildPingPayload(models.ActionHealthCheck, client, time.Now()))
	if err != nil {
		n.conn.RecordFailure(err)
		return err
	}
	n.conn.RecordSuccess()
	return nil
}

// ConnState exposes the connectivity indicator.
func (n *Notifier) ConnState() *utils.ConnState {
	return n.conn
}

// RunHeartbeat periodically sends a HEARTBEAT payload until the context is
// cancelled, keeping the connectivity indicator fresh.
func (n *Notifier) RunHeartbeat(ctx context.Context, cfg *config.Config) {
	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := n.Send(ctx, models.BuildPingPayload(models.ActionHeartbeat, cfg.HeartbeatClient, time.Now()))
			if err != nil {
				n.conn.RecordFailure(err)
				continue
			}
			n.conn.RecordSuccess()
		}
	}
}

// ReadRows fetches rows from one of the external read endpoints. The
// external contract is a POST with an empty body returning a JSON array.
func (n *Notifier) ReadRows(ctx context.Context, url string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build read request: %w", err)
	}

	resp, err := n.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	defer resp.Body.Close()

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}
