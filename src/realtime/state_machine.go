package realtime

import (
	"fmt"

	"monitor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Reconnect state machine.
// A reconnect timer is pending exactly while the state is Reconnecting.
// -----------------------------------------------------------------------------

type transitionKey struct {
	from  models.MChannelState
	event models.MChannelEvent
}

var transitions = map[transitionKey]models.MChannelState{
	{models.ChannelIdle, models.EventDial}:      models.ChannelConnecting,
	{models.ChannelIdle, models.EventScheduled}: models.ChannelReconnecting,
	{models.ChannelIdle, models.EventStopped}:   models.ChannelIdle,

	{models.ChannelConnecting, models.EventOpened}:  models.ChannelOpen,
	{models.ChannelConnecting, models.EventDropped}: models.ChannelIdle,
	{models.ChannelConnecting, models.EventStopped}: models.ChannelIdle,

	{models.ChannelOpen, models.EventDropped}: models.ChannelIdle,
	{models.ChannelOpen, models.EventStopped}: models.ChannelIdle,

	{models.ChannelReconnecting, models.EventDial}:       models.ChannelConnecting,
	{models.ChannelReconnecting, models.EventTimerFired}: models.ChannelIdle,
	{models.ChannelReconnecting, models.EventStopped}:    models.ChannelIdle,
}

// -----------------------------------------------------------------------------

// StateMachine is not safe for concurrent use; the channel guards it.
type StateMachine struct {
	state models.MChannelState
}

// -----------------------------------------------------------------------------

func NewStateMachine() *StateMachine {
	return &StateMachine{state: models.ChannelIdle}
}

// -----------------------------------------------------------------------------

// Fire applies an event. Illegal events leave the state unchanged.
func (m *StateMachine) Fire(event models.MChannelEvent) (models.MChannelState, error) {
	next, ok := transitions[transitionKey{m.state, event}]
	if !ok {
		return m.state, fmt.Errorf("illegal event %q in state %q", event, m.state)
	}
	m.state = next
	return next, nil
}

// -----------------------------------------------------------------------------

func (m *StateMachine) State() models.MChannelState {
	return m.state
}
