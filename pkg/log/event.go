package log

import "time"

// Event represents one captured gateway event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the gateway session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// GatewayModel is the model of the owning gateway.
	GatewayModel string `cbor:"4,keyasint,omitempty"`

	// SID is the sub-device identifier, when the event concerns one.
	SID string `cbor:"5,keyasint,omitempty"`

	// Command is the relayed command name, for command events.
	Command string `cbor:"6,keyasint,omitempty"`

	// Property is the property name, for property reads/writes.
	Property string `cbor:"7,keyasint,omitempty"`

	// Action is the push event name, for push and subscription events.
	Action string `cbor:"8,keyasint,omitempty"`

	// Detail carries free-form context.
	Detail string `cbor:"9,keyasint,omitempty"`

	// Err is the error text, for warning and error events.
	Err string `cbor:"10,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a command relayed through the gateway.
	CategoryCommand Category = 0

	// CategoryPush indicates a push delivery from the notification service.
	CategoryPush Category = 1

	// CategorySubscription indicates a subscription lifecycle change.
	CategorySubscription Category = 2

	// CategoryWarning indicates a logged-but-not-raised condition.
	CategoryWarning Category = 3

	// CategoryError indicates a failure.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryPush:
		return "PUSH"
	case CategorySubscription:
		return "SUBSCRIPTION"
	case CategoryWarning:
		return "WARNING"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
