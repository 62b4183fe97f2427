package interfaces

import (
	"context"
	"net/http"

	"monitor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IWebSocketConn is the read side of one push connection.
// -----------------------------------------------------------------------------

type IWebSocketConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// -----------------------------------------------------------------------------
// IWebSocketDialer opens push connections.
// -----------------------------------------------------------------------------

type IWebSocketDialer interface {
	DialContext(ctx context.Context, urlStr string, header http.Header) (IWebSocketConn, error)
}

// -----------------------------------------------------------------------------
// IRealtimeChannel is the managed push feed connection.
// -----------------------------------------------------------------------------

type IRealtimeChannel interface {
	Connect()
	ScheduleReconnect()
	Disconnect()
	GetReconnectFlag() bool
	State() models.MChannelState
	Status() models.MChannelStatus
}
