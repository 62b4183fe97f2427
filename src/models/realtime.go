package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// -----------------------------------------------------------------------------
// Realtime Frame
// -----------------------------------------------------------------------------

// MRealtimeFrame is one inbound push frame: a flat metric key -> value record.
type MRealtimeFrame map[string]any

// DecodeRealtimeFrame validates and decodes a raw push frame.
// Only JSON objects are accepted; arrays, scalars and broken payloads are rejected.
func DecodeRealtimeFrame(data []byte) (MRealtimeFrame, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("frame is not a JSON object")
	}

	var frame MRealtimeFrame
	if err := json.Unmarshal(trimmed, &frame); err != nil {
		return nil, fmt.Errorf("invalid frame payload: %w", err)
	}
	return frame, nil
}

// -----------------------------------------------------------------------------
// Realtime Update (store -> observers)
// -----------------------------------------------------------------------------

// MRealtimeUpdate carries the keys changed by one merge.
type MRealtimeUpdate struct {
	Values    map[string]any `json:"values"`
	Timestamp int64          `json:"timestamp"` // unix millis
}

// -----------------------------------------------------------------------------
// Channel States
// -----------------------------------------------------------------------------

// MHandleState is the lifecycle of the single connection handle.
type MHandleState string

const (
	HandleAbsent     MHandleState = "absent"
	HandleConnecting MHandleState = "connecting"
	HandleOpen       MHandleState = "open"
	HandleClosed     MHandleState = "closed"
)

// MChannelState is the reconnect state machine state.
type MChannelState string

const (
	ChannelIdle         MChannelState = "idle"
	ChannelConnecting   MChannelState = "connecting"
	ChannelOpen         MChannelState = "open"
	ChannelReconnecting MChannelState = "reconnecting"
)

// MChannelEvent drives MChannelState transitions.
type MChannelEvent string

const (
	EventDial       MChannelEvent = "dial"
	EventOpened     MChannelEvent = "opened"
	EventDropped    MChannelEvent = "dropped"
	EventScheduled  MChannelEvent = "scheduled"
	EventTimerFired MChannelEvent = "timer_fired"
	EventStopped    MChannelEvent = "stopped"
)

// MChannelStatus is a point-in-time view of the realtime channel.
type MChannelStatus struct {
	Endpoint     string        `json:"endpoint"`
	State        MChannelState `json:"state"`
	Handle       MHandleState  `json:"handle"`
	Reconnecting bool          `json:"reconnecting"`
	Connects     int64         `json:"connects"`
	Frames       int64         `json:"frames"`
	Rejected     int64         `json:"rejected"`
}
