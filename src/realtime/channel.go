package realtime

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/store"
	"monitor-dashboard/src/utils"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Channel keeps one push connection to the realtime endpoint alive and merges
// every inbound frame into the shared store. It reconnects forever after a
// fixed delay.
// -----------------------------------------------------------------------------

type Channel struct {
	endpoint string
	delay    time.Duration
	header   http.Header
	dialer   interfaces.IWebSocketDialer
	store    *store.RealtimeStore
	clock    utils.Clock
	Logger   *logger.Logger

	mu           sync.Mutex
	fsm          *StateMachine
	handle       models.MHandleState
	conn         interfaces.IWebSocketConn
	cancelDial   context.CancelFunc
	timer        utils.Timer
	timerSeq     uint64
	reconnecting bool
	generation   uint64

	connects atomic.Int64
	frames   atomic.Int64
	rejected atomic.Int64

	wg sync.WaitGroup
}

// -----------------------------------------------------------------------------

// NewChannel wires a channel to its endpoint and store. dialer and clock may be
// nil, in which case gorilla/websocket and wall time are used.
func NewChannel(cfg *models.MConfig, st *store.RealtimeStore, dialer interfaces.IWebSocketDialer, clock utils.Clock, log *logger.Logger) *Channel {
	if dialer == nil {
		dialer = NewGorillaDialer(
			time.Duration(cfg.Realtime.HandshakeTimeoutSeconds)*time.Second,
			cfg.Realtime.ReadLimitBytes,
		)
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	if log == nil {
		log = logger.NewLogger(cfg, "Realtime")
	}

	header := http.Header{}
	if cfg.Network.UserAgent != "" {
		header.Set("User-Agent", cfg.Network.UserAgent)
	}

	return &Channel{
		endpoint: cfg.Realtime.Endpoint,
		delay:    time.Duration(cfg.Realtime.ReconnectDelayMs) * time.Millisecond,
		header:   header,
		dialer:   dialer,
		store:    st,
		clock:    clock,
		Logger:   log,
		fsm:      NewStateMachine(),
		handle:   models.HandleAbsent,
	}
}

// -----------------------------------------------------------------------------

// Run connects and blocks until ctx is done, then disconnects.
func (c *Channel) Run(ctx context.Context) {
	c.Connect()
	<-ctx.Done()
	c.Close()
}

// -----------------------------------------------------------------------------

// Connect opens a connection unless one is already connecting or open.
// It returns immediately; the dial runs in the background.
func (c *Channel) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectLocked()
}

// -----------------------------------------------------------------------------

func (c *Channel) connectLocked() {
	if c.handle != models.HandleAbsent {
		return
	}

	c.generation++
	gen := c.generation
	c.handle = models.HandleConnecting
	c.stopTimerLocked()
	c.fire(models.EventDial)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelDial = cancel

	c.Logger.Info("Connecting to %s", c.endpoint)

	c.wg.Add(1)
	go c.dial(ctx, gen)
}

// -----------------------------------------------------------------------------

func (c *Channel) dial(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	conn, err := c.dialer.DialContext(ctx, c.endpoint, c.header)

	c.mu.Lock()
	if gen != c.generation {
		// Disconnected while dialing
		c.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.Logger.Error("Connection error: %v", err)
		c.closedLocked()
		c.mu.Unlock()
		return
	}

	c.conn = conn
	c.handle = models.HandleOpen
	c.stopTimerLocked()
	c.reconnecting = false
	c.fire(models.EventOpened)
	c.connects.Add(1)
	c.mu.Unlock()

	c.Logger.Info("Connected to %s", c.endpoint)
	c.readLoop(conn, gen)
}

// -----------------------------------------------------------------------------

func (c *Channel) readLoop(conn interfaces.IWebSocketConn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isCurrent(gen) {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.Logger.Warning("Connection lost: %v", err)
				} else {
					c.Logger.Info("Connection closed: %v", err)
				}
			}
			c.handleClosed(gen)
			return
		}

		frame, err := models.DecodeRealtimeFrame(data)
		if err != nil {
			c.rejected.Add(1)
			c.Logger.Warning("Dropping malformed frame: %v", err)
			continue
		}

		if !c.isCurrent(gen) {
			return
		}
		c.store.Merge(frame)
		c.frames.Add(1)
	}
}

// -----------------------------------------------------------------------------

func (c *Channel) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// -----------------------------------------------------------------------------

// handleClosed drops the handle of generation gen and schedules a reconnect.
// Closes of handles already dropped by Disconnect are ignored.
func (c *Channel) handleClosed(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.closedLocked()
}

// -----------------------------------------------------------------------------

func (c *Channel) closedLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	c.handle = models.HandleAbsent
	c.fire(models.EventDropped)
	c.scheduleLocked()
}

// -----------------------------------------------------------------------------

// ScheduleReconnect arms the reconnect timer. Reconnects are only scheduled
// when no connection exists: it is a no-op while a timer is already pending
// or a connection is connecting or open.
func (c *Channel) ScheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleLocked()
}

// -----------------------------------------------------------------------------

func (c *Channel) scheduleLocked() {
	if c.timer != nil || c.handle != models.HandleAbsent {
		return
	}

	c.timerSeq++
	seq := c.timerSeq
	c.timer = c.clock.AfterFunc(c.delay, func() { c.onTimer(seq) })
	c.fire(models.EventScheduled)

	c.Logger.Info("Reconnecting in %v", c.delay)
}

// -----------------------------------------------------------------------------

func (c *Channel) onTimer(seq uint64) {
	c.mu.Lock()
	if c.timer == nil || seq != c.timerSeq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.fire(models.EventTimerFired)
	if c.handle == models.HandleAbsent {
		c.reconnecting = true
	}

	// Dial under the same lock so a concurrent Disconnect sees the attempt
	c.connectLocked()
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (c *Channel) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// -----------------------------------------------------------------------------

// Disconnect closes the connection, cancels any pending reconnect and leaves
// the channel idle. Calling it again is a no-op.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.handle = models.HandleAbsent
	c.stopTimerLocked()
	c.reconnecting = false
	c.fire(models.EventStopped)
}

// -----------------------------------------------------------------------------

// Close disconnects and waits for the dial and read goroutines to exit.
func (c *Channel) Close() {
	c.Disconnect()
	c.wg.Wait()
	c.Logger.Info("Realtime channel stopped")
}

// -----------------------------------------------------------------------------

func (c *Channel) fire(event models.MChannelEvent) {
	if _, err := c.fsm.Fire(event); err != nil {
		c.Logger.Warning("State machine: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// GetState returns the live store shared with every reader.
func (c *Channel) GetState() *store.RealtimeStore {
	return c.store
}

// -----------------------------------------------------------------------------

// GetReconnectFlag reports whether a reconnect attempt is in flight.
func (c *Channel) GetReconnectFlag() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnecting
}

// -----------------------------------------------------------------------------

func (c *Channel) State() models.MChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.State()
}

// -----------------------------------------------------------------------------

func (c *Channel) Status() models.MChannelStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.MChannelStatus{
		Endpoint:     c.endpoint,
		State:        c.fsm.State(),
		Handle:       c.handle,
		Reconnecting: c.reconnecting,
		Connects:     c.connects.Load(),
		Frames:       c.frames.Load(),
		Rejected:     c.rejected.Load(),
	}
}

var _ interfaces.IRealtimeChannel = (*Channel)(nil)
