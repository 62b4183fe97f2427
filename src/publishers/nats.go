package publishers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"

	"github.com/nats-io/nats.go"
)

// -----------------------------------------------------------------------------
// NATSPublisher republishes every store update, one message per metric key.
// -----------------------------------------------------------------------------

type NATSPublisher struct {
	name   string
	config *models.MNATSConfig
	logger *logger.Logger

	mu sync.RWMutex

	nc         *nats.Conn
	js         nats.JetStreamContext
	serializer interfaces.ISerializer

	connected atomic.Bool
	published atomic.Int64
}

// -----------------------------------------------------------------------------

func NewNATSPublisher(config *models.MNATSConfig, logger *logger.Logger, serializer interfaces.ISerializer) *NATSPublisher {
	return &NATSPublisher{
		name:       config.ClientID,
		config:     config,
		logger:     logger,
		serializer: serializer,
	}
}

// -----------------------------------------------------------------------------

// OnUpdate publishes each changed key to <prefix>.<key>.
func (np *NATSPublisher) OnUpdate(update models.MRealtimeUpdate) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}

	keys := make([]string, 0, len(update.Values))
	for k := range update.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		payload, err := np.serializer.Marshal(models.MPublishedValue{
			Key:       key,
			Value:     update.Values[key],
			Timestamp: update.Timestamp,
		})
		if err != nil {
			return err
		}
		if err := np.publish(Subject(np.config.SubjectPrefix, key), payload); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (np *NATSPublisher) publish(subject string, data []byte) error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc == nil {
		return fmt.Errorf("nats client not connected")
	}
	if np.js != nil {
		if _, err := np.js.Publish(subject, data); err != nil {
			np.logger.Error("%s : jetstream publish failed for %s: %v", np.name, subject, err)
			return err
		}
	} else if err := np.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}

	np.published.Add(1)
	return nil
}

// -----------------------------------------------------------------------------

// Subject builds the bus subject for a metric key. Characters NATS treats
// as tokens or wildcards are replaced so one key stays one token.
func Subject(prefix, key string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, key)
	if token == "" {
		token = "_"
	}

	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return token
	}
	return prefix + "." + token
}

// -----------------------------------------------------------------------------

// Connect dials the configured servers and, if enabled, prepares JetStream.
func (np *NATSPublisher) Connect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc != nil && np.nc.IsConnected() {
		return nil
	}
	if len(np.config.Servers) == 0 {
		return fmt.Errorf("no nats servers configured")
	}

	opts := []nats.Option{
		nats.Name(np.config.ClientID),
		nats.MaxReconnects(np.config.MaxReconnects),

		nats.ClosedHandler(func(nc *nats.Conn) {
			np.logger.Warning("%s : NATS connection closed", np.name)
			np.setConnected(false)
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			np.logger.Warning("%s : NATS disconnected, attempting reconnect: %v", np.name, err)
			np.setConnected(false)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			np.logger.Info("%s : NATS reconnected to %s", np.name, nc.ConnectedUrl())
			np.setConnected(true)
		}),
	}

	// Zero keeps the nats.go defaults
	if np.config.ConnectTimeoutSeconds > 0 {
		opts = append(opts, nats.Timeout(time.Duration(np.config.ConnectTimeoutSeconds)*time.Second))
	}
	if np.config.ReconnectWaitSeconds > 0 {
		opts = append(opts, nats.ReconnectWait(time.Duration(np.config.ReconnectWaitSeconds)*time.Second))
	}

	nc, err := nats.Connect(strings.Join(np.config.Servers, ","), opts...)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}
	np.nc = nc
	np.setConnected(true)
	np.logger.Info("%s : connected to NATS at %s", np.name, nc.ConnectedUrl())

	if np.config.JetStream == nil || !np.config.JetStream.Enabled {
		np.logger.Info("%s : publishing with NATS Core (fire-and-forget)", np.name)
		return nil
	}

	np.js, err = nc.JetStream()
	if err != nil {
		return fmt.Errorf("jetstream context creation failed: %w", err)
	}
	if err := np.ensureStream(); err != nil {
		np.logger.Warning("%s : failed to ensure stream exists: %v (continuing anyway)", np.name, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (np *NATSPublisher) ensureStream() error {
	cfg := np.config.JetStream
	if cfg.StreamName == "" {
		return fmt.Errorf("stream name not configured")
	}

	if info, err := np.js.StreamInfo(cfg.StreamName); err == nil {
		np.logger.Info("%s : JetStream stream '%s' already exists with %d subjects",
			np.name, cfg.StreamName, len(info.Config.Subjects))
		return nil
	}

	maxAge := time.Duration(cfg.MaxAgeHours) * time.Hour
	if maxAge == 0 {
		maxAge = 72 * time.Hour
	}

	subjects := cfg.Subjects
	if len(subjects) == 0 {
		subjects = []string{strings.Trim(np.config.SubjectPrefix, ".") + ".>"}
	}

	_, err := np.js.AddStream(&nats.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  subjects,
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		MaxAge:    maxAge,
		Discard:   nats.DiscardOld,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream '%s': %w", cfg.StreamName, err)
	}

	np.logger.Info("%s : created JetStream stream '%s' with subjects: %v", np.name, cfg.StreamName, subjects)
	return nil
}

// -----------------------------------------------------------------------------

func (np *NATSPublisher) Disconnect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc == nil || np.nc.IsClosed() {
		return nil
	}

	if err := np.nc.Drain(); err != nil {
		np.nc.Close()
	}
	np.setConnected(false)
	np.logger.Info("%s : NATS connection closed", np.name)
	return nil
}

// -----------------------------------------------------------------------------

func (np *NATSPublisher) IsConnected() bool {
	return np.connected.Load()
}

// -----------------------------------------------------------------------------

// Published returns the number of messages sent since start.
func (np *NATSPublisher) Published() int64 {
	return np.published.Load()
}

// -----------------------------------------------------------------------------

// setConnected is also called from NATS event handler goroutines.
func (np *NATSPublisher) setConnected(status bool) {
	np.connected.Store(status)
}

var _ interfaces.IPublisher = (*NATSPublisher)(nil)
