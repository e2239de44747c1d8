package push

import "context"

// EventInfo describes one event subscription request.
type EventInfo struct {
	// Action is the event name as delivered in push callbacks.
	Action string

	// Extra is the raw event registration payload.
	Extra string

	// SourceSID identifies the sub-device the event originates from.
	SourceSID string

	// SourceModel is the zigbee model tag of the source device.
	SourceModel string

	// Event optionally overrides the event name sent to the server.
	Event string

	// CommandExtra is an optional command payload for the subscription.
	CommandExtra string

	// TriggerValue is an optional trigger threshold.
	TriggerValue *int
}

// Server is the subscription contract of a notification service.
//
// Both calls may block on the underlying service; they must be awaited
// sequentially per event, matching the partial-failure semantics of the
// subscription lifecycle in the gateway layer.
type Server interface {
	// Subscribe registers interest in an event and returns an opaque
	// subscription handle. An empty handle with a nil error means the
	// server refused the subscription.
	Subscribe(ctx context.Context, info EventInfo) (string, error)

	// Unsubscribe releases a previously returned subscription handle.
	Unsubscribe(ctx context.Context, id string) error
}
