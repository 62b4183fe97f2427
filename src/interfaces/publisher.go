package interfaces

import "monitor-dashboard/src/models"

// -----------------------------------------------------------------------------
// IPublisher republishes realtime updates to a message bus.
// -----------------------------------------------------------------------------

type IPublisher interface {
	// OnUpdate is called for every merged store update.
	OnUpdate(update models.MRealtimeUpdate) error

	Connect() error
	Disconnect() error
	IsConnected() bool
}

// -----------------------------------------------------------------------------

// ISerializer keeps the publisher agnostic about the wire format.
type ISerializer interface {
	Marshal(obj any) ([]byte, error)
	Unmarshal(data []byte, obj any) error
}
