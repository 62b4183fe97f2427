package interfaces

import "monitor-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger shares realtime data with browser clients.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes one message to every connected client.
	Broadcast(msg models.MDashboardMessage)

	// -----------------------------------------------------------------------------
	// BroadcastUpdate pushes one store update as an UPDATE message.
	BroadcastUpdate(update models.MRealtimeUpdate)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
