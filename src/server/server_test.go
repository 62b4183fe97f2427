package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"monitor-dashboard/src/chart"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/store"
	"monitor-dashboard/src/utils"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeChannel struct {
	connects    atomic.Int64
	disconnects atomic.Int64
	flag        atomic.Bool
}

func (f *fakeChannel) Connect()                    { f.connects.Add(1) }
func (f *fakeChannel) ScheduleReconnect()          {}
func (f *fakeChannel) Disconnect()                 { f.disconnects.Add(1) }
func (f *fakeChannel) GetReconnectFlag() bool      { return f.flag.Load() }
func (f *fakeChannel) State() models.MChannelState { return models.ChannelOpen }
func (f *fakeChannel) Status() models.MChannelStatus {
	return models.MChannelStatus{Endpoint: "ws://fake", State: models.ChannelOpen, Handle: models.HandleOpen}
}

type fakeHistory struct{}

func (fakeHistory) Fetch(_ context.Context, entityID, timeframe string) (*models.MHistorySeries, bool) {
	if entityID != "cpu" || timeframe != "lastHour" {
		return nil, false
	}
	return &models.MHistorySeries{Labels: []string{"2024-01-02 03:00:00"}, Data: []float64{42}}, true
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

type serverFixture struct {
	server  *DashboardServer
	store   *store.RealtimeStore
	series  *utils.SeriesManager
	channel *fakeChannel
	http    *httptest.Server
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	log := logger.NewLoggerWithWriter("CRITICAL", "Server", io.Discard)
	st := store.NewRealtimeStore(nil)
	series := utils.NewSeriesManager(16, log)
	ch := &fakeChannel{}
	binding := chart.NewBinding(fakeHistory{}, series, st, time.UTC, "totalMem", log)

	s := NewDashboardServer(&models.MConfig{Host: "127.0.0.1", Port: 8090}, log, Deps{
		Store:   st,
		Channel: ch,
		History: fakeHistory{},
		Binding: binding,
		Series:  series,
	})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		srv.Close()
	})

	return &serverFixture{server: s, store: st, series: series, channel: ch, http: srv}
}

func (f *serverFixture) get(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(f.http.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("GET %s: invalid JSON: %v", path, err)
	}
	return resp.StatusCode, body
}

func (f *serverFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.MDashboardMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.MDashboardMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() failed: %v", err)
	}
	return msg
}

// -----------------------------------------------------------------------------
// REST
// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	f := newServerFixture(t)
	f.store.Set("cpu", 1.0)

	status, body := f.get(t, "/api/health")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ok" || body["keys"] != 1.0 {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["realtime"]; !ok {
		t.Error("health is missing realtime status")
	}
}

func TestStateEndpoints(t *testing.T) {
	f := newServerFixture(t)
	f.store.Merge(models.MRealtimeFrame{"cpu": 12.5, "host": "web-1"})

	status, body := f.get(t, "/api/state")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	values, _ := body["values"].(map[string]any)
	if values["cpu"] != 12.5 || values["host"] != "web-1" {
		t.Errorf("values = %v", values)
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/api/state/cpu", http.StatusOK},
		{"/api/state/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		if got, _ := f.get(t, tt.path); got != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, got, tt.status)
		}
	}
}

func TestHistoryEndpoint(t *testing.T) {
	f := newServerFixture(t)

	status, body := f.get(t, "/api/history/cpu/lastHour")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if data, _ := body["data"].([]any); len(data) != 1 || data[0] != 42.0 {
		t.Errorf("data = %v", body["data"])
	}

	if status, _ := f.get(t, "/api/history/cpu/lastYear"); status != http.StatusNotFound {
		t.Errorf("missing timeframe status = %d, want 404", status)
	}
}

func TestChartEndpoint(t *testing.T) {
	f := newServerFixture(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/chart/cpu/lastHour?width=320&dark=true&color=rgb(1,2,3)&zoom=1", http.StatusOK},
		{"/api/chart/cpu/lastHour?color=blue", http.StatusBadRequest},
		{"/api/chart/mem/lastDay", http.StatusNotFound},
	}
	for _, tt := range tests {
		status, body := f.get(t, tt.path)
		if status != tt.status {
			t.Errorf("GET %s = %d, want %d (%v)", tt.path, status, tt.status, body)
		}
		if status == http.StatusOK {
			if body["color"] != "rgba(1, 2, 3, 0.8)" {
				t.Errorf("color = %v", body["color"])
			}
			zoom, _ := body["zoom"].(map[string]any)
			if zoom["pan_enabled"] != true || zoom["min_range_ms"] != 120000.0 {
				t.Errorf("zoom = %v", zoom)
			}
		}
	}
}

func TestSamplesFromLiveSeries(t *testing.T) {
	f := newServerFixture(t)
	for i := 1; i <= 3; i++ {
		f.series.AddSample(models.MMetricSample{Metric: "cpu", Value: float64(i), Timestamp: int64(i * 1000)})
	}

	status, body := f.get(t, "/api/samples/cpu?since=1000&limit=1")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	samples, _ := body["samples"].([]any)
	if len(samples) != 1 {
		t.Fatalf("samples = %v, want 1 entry", samples)
	}
	if s := samples[0].(map[string]any); s["value"] != 3.0 {
		t.Errorf("sample = %v, want value 3", s)
	}
}

func TestReconnectEndpoint(t *testing.T) {
	f := newServerFixture(t)

	resp, err := http.Post(f.http.URL+"/api/reconnect", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", resp.StatusCode)
	}
	if f.channel.disconnects.Load() != 1 || f.channel.connects.Load() != 1 {
		t.Errorf("disconnects = %d, connects = %d; want 1, 1", f.channel.disconnects.Load(), f.channel.connects.Load())
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newServerFixture(t)

	req, _ := http.NewRequest(http.MethodOptions, f.http.URL+"/api/state", nil)
	req.Header.Set("Origin", "http://127.0.0.1:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://127.0.0.1:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

// -----------------------------------------------------------------------------
// WebSocket
// -----------------------------------------------------------------------------

func TestWebSocketInitialSnapshotAndUpdates(t *testing.T) {
	f := newServerFixture(t)
	f.store.Set("cpu", 1.0)
	f.channel.flag.Store(true)

	conn := f.dial(t)

	initial := readMessage(t, conn)
	if initial.Type != "INITIAL" || initial.Values["cpu"] != 1.0 || !initial.Reconnecting {
		t.Fatalf("initial = %+v", initial)
	}

	f.server.BroadcastUpdate(models.MRealtimeUpdate{Values: map[string]any{"mem": 2.0}, Timestamp: 99})

	update := readMessage(t, conn)
	if update.Type != "UPDATE" || update.Values["mem"] != 2.0 || update.Timestamp != 99 {
		t.Errorf("update = %+v", update)
	}
}

func TestWebSocketSubscribeFiltersKeys(t *testing.T) {
	f := newServerFixture(t)
	f.store.Merge(models.MRealtimeFrame{"cpu": 1.0, "mem": 2.0})

	conn := f.dial(t)
	readMessage(t, conn) // INITIAL, all keys

	if err := conn.WriteJSON(models.MSubscribeCommand{Command: "subscribe", Keys: []string{"cpu"}}); err != nil {
		t.Fatal(err)
	}

	filtered := readMessage(t, conn)
	if filtered.Type != "INITIAL" || len(filtered.Values) != 1 || filtered.Values["cpu"] != 1.0 {
		t.Fatalf("filtered snapshot = %+v", filtered)
	}

	// Updates without subscribed keys are skipped
	f.server.BroadcastUpdate(models.MRealtimeUpdate{Values: map[string]any{"mem": 3.0}})
	f.server.BroadcastUpdate(models.MRealtimeUpdate{Values: map[string]any{"cpu": 4.0, "mem": 5.0}})

	update := readMessage(t, conn)
	if len(update.Values) != 1 || update.Values["cpu"] != 4.0 {
		t.Errorf("update = %+v, want only cpu=4", update)
	}
}

func TestWebSocketBadCommandDisconnects(t *testing.T) {
	f := newServerFixture(t)

	conn := f.dial(t)
	readMessage(t, conn)

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection still open after bad command")
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.server.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := f.server.ClientCount(); n != 0 {
		t.Errorf("ClientCount() = %d, want 0", n)
	}
}
