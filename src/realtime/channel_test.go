package realtime

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/store"
	"monitor-dashboard/src/utils"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeConn struct {
	msgs      chan []byte
	remoteErr chan error
	closed    chan struct{}
	once      sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		msgs:      make(chan []byte, 16),
		remoteErr: make(chan error, 1),
		closed:    make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case <-c.closed:
		return 0, nil, errors.New("use of closed network connection")
	default:
	}
	select {
	case m := <-c.msgs:
		return websocket.TextMessage, m, nil
	case err := <-c.remoteErr:
		return 0, nil, err
	case <-c.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type dialResult struct {
	conn *fakeConn
	err  error
}

type fakeDialer struct {
	dials   atomic.Int64
	results chan dialResult
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{results: make(chan dialResult, 8)}
}

func (d *fakeDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (interfaces.IWebSocketConn, error) {
	d.dials.Add(1)
	select {
	case r := <-d.results:
		if r.err != nil {
			return nil, r.err
		}
		return r.conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func testConfig() *models.MConfig {
	return &models.MConfig{
		Realtime: models.MRealtimeConfig{
			Endpoint:         "ws://feed.test/ws",
			ReconnectDelayMs: 3000,
		},
	}
}

func newTestChannel(t *testing.T) (*Channel, *fakeDialer, *utils.ManualClock, *store.RealtimeStore) {
	t.Helper()
	d := newFakeDialer()
	clock := utils.NewManualClock(time.Unix(0, 0))
	st := store.NewRealtimeStore(clock)
	log := logger.NewLoggerWithWriter("ERROR", "Realtime", io.Discard)
	ch := NewChannel(testConfig(), st, d, clock, log)
	t.Cleanup(ch.Close)
	return ch, d, clock, st
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func openChannel(t *testing.T, ch *Channel, d *fakeDialer) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	d.results <- dialResult{conn: conn}
	ch.Connect()
	waitFor(t, "open state", func() bool { return ch.State() == models.ChannelOpen })
	return conn
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestConnectTwiceDialsOnce(t *testing.T) {
	ch, d, clock, _ := newTestChannel(t)

	ch.Connect()
	ch.Connect()

	waitFor(t, "first dial", func() bool { return d.dials.Load() >= 1 })
	time.Sleep(10 * time.Millisecond)

	if got := d.dials.Load(); got != 1 {
		t.Fatalf("dials = %d, want 1", got)
	}
	if got := ch.Status().Handle; got != models.HandleConnecting {
		t.Errorf("Handle = %v, want connecting", got)
	}

	// A dial aborted by Disconnect must not schedule a reconnect
	ch.Close()
	if clock.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d after Close, want 0", clock.PendingTimers())
	}
}

func TestConnectWhileOpenIsNoop(t *testing.T) {
	ch, d, _, _ := newTestChannel(t)
	openChannel(t, ch, d)

	ch.Connect()

	if got := d.dials.Load(); got != 1 {
		t.Errorf("dials = %d, want 1", got)
	}
}

func TestFramesMergeIntoStore(t *testing.T) {
	ch, d, _, st := newTestChannel(t)
	conn := openChannel(t, ch, d)

	conn.msgs <- []byte(`{"a":1,"b":2}`)
	conn.msgs <- []byte(`{"b":3,"c":4}`)

	waitFor(t, "two frames", func() bool { return ch.Status().Frames == 2 })

	want := map[string]float64{"a": 1, "b": 3, "c": 4}
	for k, v := range want {
		if got, _ := st.Get(k); got != v {
			t.Errorf("store[%s] = %v, want %v", k, got, v)
		}
	}
	if ch.GetState() != st {
		t.Error("GetState() did not return the shared store")
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	ch, d, _, st := newTestChannel(t)
	conn := openChannel(t, ch, d)

	conn.msgs <- []byte(`[1,2,3]`)
	conn.msgs <- []byte(`not json`)
	conn.msgs <- []byte(`"scalar"`)
	conn.msgs <- []byte(`{"ok":true}`)

	waitFor(t, "valid frame", func() bool { _, ok := st.Get("ok"); return ok })

	status := ch.Status()
	if status.Rejected != 3 {
		t.Errorf("Rejected = %d, want 3", status.Rejected)
	}
	if status.State != models.ChannelOpen {
		t.Errorf("State = %v, want open", status.State)
	}
	if st.Len() != 1 {
		t.Errorf("store Len() = %d, want 1", st.Len())
	}
}

func TestCloseSchedulesExactlyOneReconnect(t *testing.T) {
	ch, d, clock, _ := newTestChannel(t)
	conn := openChannel(t, ch, d)

	conn.remoteErr <- &websocket.CloseError{Code: websocket.CloseAbnormalClosure}
	waitFor(t, "reconnecting state", func() bool { return ch.State() == models.ChannelReconnecting })

	if clock.PendingTimers() != 1 {
		t.Fatalf("PendingTimers() = %d, want 1", clock.PendingTimers())
	}
	if ch.GetReconnectFlag() {
		t.Error("reconnect flag set before the timer fired")
	}

	clock.Advance(2999 * time.Millisecond)
	if got := d.dials.Load(); got != 1 {
		t.Fatalf("dials = %d before delay elapsed, want 1", got)
	}

	clock.Advance(time.Millisecond)
	if !ch.GetReconnectFlag() {
		t.Error("reconnect flag not set after the timer fired")
	}
	waitFor(t, "second dial", func() bool { return d.dials.Load() == 2 })

	d.results <- dialResult{conn: newFakeConn()}
	waitFor(t, "reopened", func() bool { return ch.State() == models.ChannelOpen })

	if ch.GetReconnectFlag() {
		t.Error("reconnect flag still set after open")
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d after open, want 0", clock.PendingTimers())
	}
	if ch.Status().Connects != 2 {
		t.Errorf("Connects = %d, want 2", ch.Status().Connects)
	}
}

func TestFailedDialKeepsRetrying(t *testing.T) {
	ch, d, clock, _ := newTestChannel(t)

	d.results <- dialResult{err: errors.New("connection refused")}
	ch.Connect()
	waitFor(t, "reconnecting after failed dial", func() bool { return ch.State() == models.ChannelReconnecting })

	d.results <- dialResult{err: errors.New("connection refused")}
	clock.Advance(3 * time.Second)
	waitFor(t, "second failure", func() bool {
		return d.dials.Load() == 2 && ch.State() == models.ChannelReconnecting
	})

	if !ch.GetReconnectFlag() {
		t.Error("reconnect flag cleared by a failed attempt")
	}
	if clock.PendingTimers() != 1 {
		t.Errorf("PendingTimers() = %d, want 1", clock.PendingTimers())
	}
}

func TestScheduleReconnectTwiceSchedulesOneTimer(t *testing.T) {
	ch, d, clock, _ := newTestChannel(t)

	ch.ScheduleReconnect()
	ch.ScheduleReconnect()

	if clock.PendingTimers() != 1 {
		t.Fatalf("PendingTimers() = %d, want 1", clock.PendingTimers())
	}
	if ch.State() != models.ChannelReconnecting {
		t.Errorf("State() = %v, want reconnecting", ch.State())
	}

	clock.Advance(3 * time.Second)
	waitFor(t, "dial", func() bool { return d.dials.Load() == 1 })
}

func TestScheduleReconnectWhileOpenIsNoop(t *testing.T) {
	ch, d, clock, _ := newTestChannel(t)
	openChannel(t, ch, d)

	ch.ScheduleReconnect()

	if clock.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d, want 0", clock.PendingTimers())
	}
}

func TestDisconnectIsIdempotentAndSuppressesReconnect(t *testing.T) {
	ch, d, clock, _ := newTestChannel(t)
	conn := openChannel(t, ch, d)

	ch.Disconnect()
	ch.Disconnect()
	ch.Close()

	if !conn.isClosed() {
		t.Error("connection not closed by Disconnect")
	}
	if ch.State() != models.ChannelIdle {
		t.Errorf("State() = %v, want idle", ch.State())
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d, want 0", clock.PendingTimers())
	}

	clock.Advance(10 * time.Second)
	if got := d.dials.Load(); got != 1 {
		t.Errorf("dials = %d after Disconnect, want 1", got)
	}
}

func TestDisconnectCancelsPendingTimer(t *testing.T) {
	ch, d, clock, _ := newTestChannel(t)

	ch.ScheduleReconnect()
	ch.Disconnect()

	if clock.PendingTimers() != 0 {
		t.Fatalf("PendingTimers() = %d, want 0", clock.PendingTimers())
	}
	clock.Advance(time.Minute)
	if got := d.dials.Load(); got != 0 {
		t.Errorf("dials = %d, want 0", got)
	}
	if ch.GetReconnectFlag() {
		t.Error("reconnect flag set after Disconnect")
	}
}

func TestDisconnectRacingTimerLeavesChannelIdle(t *testing.T) {
	for i := 0; i < 200; i++ {
		ch, _, clock, _ := newTestChannel(t)
		ch.ScheduleReconnect()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			clock.Advance(3 * time.Second)
		}()
		go func() {
			defer wg.Done()
			ch.Disconnect()
		}()
		wg.Wait()

		// Either the timer was cancelled or the attempt it started was dropped
		st := ch.Status()
		if st.State != models.ChannelIdle || st.Handle != models.HandleAbsent || st.Reconnecting {
			t.Fatalf("iteration %d: status after Disconnect = %+v, want idle", i, st)
		}
		if clock.PendingTimers() != 0 {
			t.Fatalf("iteration %d: PendingTimers() = %d, want 0", i, clock.PendingTimers())
		}
	}
}

func TestConnectAfterDisconnectReopens(t *testing.T) {
	ch, d, _, _ := newTestChannel(t)
	openChannel(t, ch, d)

	ch.Disconnect()
	openChannel(t, ch, d)

	if got := d.dials.Load(); got != 2 {
		t.Errorf("dials = %d, want 2", got)
	}
}

// -----------------------------------------------------------------------------
// gorilla/websocket integration
// -----------------------------------------------------------------------------

func TestChannelAgainstWebSocketServer(t *testing.T) {
	var accepted atomic.Int64
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := accepted.Add(1)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"cpu":`+strings.Repeat("1", int(n))+`}`))
		// First connection is dropped by the server to force a reconnect
		if n == 1 {
			conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Realtime.Endpoint = "ws" + strings.TrimPrefix(srv.URL, "http")
	cfg.Realtime.ReconnectDelayMs = 20

	st := store.NewRealtimeStore(nil)
	ch := NewChannel(cfg, st, nil, nil, logger.NewLoggerWithWriter("ERROR", "Realtime", io.Discard))
	defer ch.Close()

	ch.Connect()

	waitFor(t, "second connection", func() bool { return accepted.Load() >= 2 })
	waitFor(t, "value from second connection", func() bool {
		v, _ := st.Get("cpu")
		return v == 11.0
	})
	waitFor(t, "open", func() bool { return ch.State() == models.ChannelOpen })

	if ch.GetReconnectFlag() {
		t.Error("reconnect flag set while open")
	}
}
