package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-center/models"
	"service-center/monitoring"
	"service-center/utils"
)

func staticURL(url string) func(ctx context.Context) string {
	return func(ctx context.Context) string { return url }
}

func TestNotifier_Send_PostsJSON(t *testing.T) {
	var (
		mu       sync.Mutex
		received map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		received = body
		mu.Unlock()
	}))
	defer srv.Close()

	n := NewNotifier(staticURL(srv.URL), utils.NewConnState(), monitoring.NewMonitor())

	ticket := &models.Ticket{
		ID:           "SC-1234",
		CustomerName: "A",
		Status:       models.TicketStatusNew,
		CreatedAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	err := n.Send(context.Background(), models.BuildNewTicketPayload(ticket, "Ravi"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "NEW_TICKET", received["action"])
	assert.Equal(t, "SC-1234", received["Ticket ID"])
	assert.Equal(t, "Ravi", received["Assigned Technician"])
}

func TestNotifier_Send_IgnoresStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(staticURL(srv.URL), utils.NewConnState(), monitoring.NewMonitor())

	// A 500 from the endpoint still counts as sent.
	err := n.Send(context.Background(), models.BuildPingPayload(models.ActionHeartbeat, "test", time.Now()))
	assert.NoError(t, err)
}

func TestNotifier_Send_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	n := NewNotifier(staticURL(srv.URL), utils.NewConnState(), monitoring.NewMonitor())

	err := n.Send(context.Background(), models.BuildPingPayload(models.ActionHeartbeat, "test", time.Now()))
	assert.Error(t, err)
}

func TestNotifier_Send_MissingURL(t *testing.T) {
	n := NewNotifier(staticURL(""), utils.NewConnState(), monitoring.NewMonitor())

	err := n.Send(context.Background(), models.BuildPingPayload(models.ActionHeartbeat, "test", time.Now()))
	assert.Error(t, err)
}

func TestNotifier_DispatchAndFlush(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	defer srv.Close()

	n := NewNotifier(staticURL(srv.URL), utils.NewConnState(), monitoring.NewMonitor())

	for i := 0; i < 3; i++ {
		n.Dispatch(models.BuildPingPayload(models.ActionHeartbeat, "test", time.Now()))
	}
	n.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, count)
}

func TestNotifier_HealthCheck_FlipsConnState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "HEALTH_CHECK", body["action"])
	}))

	conn := utils.NewConnState()
	assert.Equal(t, utils.StateUnknown, conn.State())

	n := NewNotifier(staticURL(srv.URL), conn, monitoring.NewMonitor())

	require.NoError(t, n.HealthCheck(context.Background(), "test"))
	assert.Equal(t, utils.StateConnected, conn.State())

	srv.Close()
	require.Error(t, n.HealthCheck(context.Background(), "test"))
	assert.Equal(t, utils.StateError, conn.State())
	assert.Error(t, conn.LastError())
}

func TestNotifier_ReadRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"Ticket ID":"SC-1234","Status":"New"},{"Ticket ID":"SC-5678","Status":"Completed"}]`))
	}))
	defer srv.Close()

	n := NewNotifier(staticURL(srv.URL), utils.NewConnState(), monitoring.NewMonitor())

	rows, err := n.ReadRows(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SC-1234", rows[0]["Ticket ID"])
	assert.Equal(t, "Completed", rows[1]["Status"])
}

func TestNotifier_ReadRows_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	n := NewNotifier(staticURL(srv.URL), utils.NewConnState(), monitoring.NewMonitor())

	_, err := n.ReadRows(context.Background(), srv.URL)
	assert.Error(t, err)
}
