// Package push defines the notification-service contract consumed by the
// gateway layer.
//
// A push server delivers asynchronous, unsolicited notifications describing
// state changes on sub-devices. This package only defines the subscription
// contract: how a sub-device registers interest in an event and how it
// releases a subscription. The delivery mechanism itself lives outside this
// module; deliveries reach a sub-device through its PushCallback.
//
// Subscriptions are keyed by (device, event): an EventInfo carries the event
// name, its registration payload, and the identity of the sub-device the
// event originates from. A subscribe call returns an opaque handle used to
// release the subscription later. A server may refuse a subscription by
// returning an empty handle without an error.
package push
