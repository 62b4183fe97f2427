package realtime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"monitor-dashboard/src/interfaces"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// GorillaDialer opens push connections with gorilla/websocket.
// -----------------------------------------------------------------------------

type GorillaDialer struct {
	Dialer    *websocket.Dialer
	ReadLimit int64
}

// -----------------------------------------------------------------------------

func NewGorillaDialer(handshakeTimeout time.Duration, readLimit int64) *GorillaDialer {
	d := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d.HandshakeTimeout = handshakeTimeout
	}
	return &GorillaDialer{Dialer: &d, ReadLimit: readLimit}
}

// -----------------------------------------------------------------------------

func (d *GorillaDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (interfaces.IWebSocketConn, error) {
	conn, resp, err := d.Dialer.DialContext(ctx, urlStr, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", urlStr, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", urlStr, err)
	}

	if d.ReadLimit > 0 {
		conn.SetReadLimit(d.ReadLimit)
	}
	return conn, nil
}
