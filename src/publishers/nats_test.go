package publishers

import (
	"io"
	"os"
	"testing"
	"time"

	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
	"monitor-dashboard/src/serializers"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"monitor.metrics", "cpu", "monitor.metrics.cpu"},
		{"monitor.metrics.", "cpu", "monitor.metrics.cpu"},
		{"", "cpu", "cpu"},
		{"m", "disk.used", "m.disk_used"},
		{"m", "a*b>c", "m.a_b_c"},
		{"m", "load avg", "m.load_avg"},
		{"m", "", "m._"},
	}

	for _, tt := range tests {
		if got := Subject(tt.prefix, tt.key); got != tt.want {
			t.Errorf("Subject(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestOnUpdateRequiresConnection(t *testing.T) {
	cfg := &models.MNATSConfig{ClientID: "test", SubjectPrefix: "m"}
	p := NewNATSPublisher(cfg, logger.NewLoggerWithWriter(nil, "NATS", io.Discard), serializers.NewJSONSerializer())

	if p.IsConnected() {
		t.Fatal("new publisher reports connected")
	}
	if err := p.OnUpdate(models.MRealtimeUpdate{Values: map[string]any{"cpu": 1.0}}); err == nil {
		t.Fatal("OnUpdate() without connection succeeded")
	}
	if err := p.Disconnect(); err != nil {
		t.Fatalf("Disconnect() before Connect: %v", err)
	}
}

func TestConnectWithoutServers(t *testing.T) {
	p := NewNATSPublisher(&models.MNATSConfig{}, logger.NewLoggerWithWriter(nil, "NATS", io.Discard), serializers.NewJSONSerializer())
	if err := p.Connect(); err == nil {
		t.Fatal("Connect() with no servers succeeded")
	}
}

func TestPublishToServer(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}

	prefix := "monitor-test." + uuid.NewString()
	cfg := &models.MNATSConfig{
		Servers:               []string{url},
		ClientID:              "monitor-test",
		SubjectPrefix:         prefix,
		ConnectTimeoutSeconds: 2,
		ReconnectWaitSeconds:  1,
	}
	p := NewNATSPublisher(cfg, logger.NewLoggerWithWriter(nil, "NATS", io.Discard), serializers.NewJSONSerializer())
	if err := p.Connect(); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer p.Disconnect()

	sub, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("subscriber connect: %v", err)
	}
	defer sub.Close()

	msgs := make(chan *nats.Msg, 4)
	s, err := sub.ChanSubscribe(prefix+".>", msgs)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer s.Unsubscribe()
	if err := sub.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	update := models.MRealtimeUpdate{Values: map[string]any{"cpu": 42.0, "mem": 7.0}, Timestamp: 1000}
	if err := p.OnUpdate(update); err != nil {
		t.Fatalf("OnUpdate() failed: %v", err)
	}

	ser := serializers.NewJSONSerializer()
	got := map[string]models.MPublishedValue{}
	for len(got) < 2 {
		select {
		case m := <-msgs:
			var v models.MPublishedValue
			if err := ser.Unmarshal(m.Data, &v); err != nil {
				t.Fatalf("decode %s: %v", m.Subject, err)
			}
			got[m.Subject] = v
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, received %d messages", len(got))
		}
	}

	if v := got[prefix+".cpu"]; v.Value != 42.0 || v.Timestamp != 1000 {
		t.Errorf("cpu message = %+v", v)
	}
	if _, ok := got[prefix+".mem"]; !ok {
		t.Error("mem message missing")
	}
	if p.Published() != 2 {
		t.Errorf("Published() = %d, want 2", p.Published())
	}
}
