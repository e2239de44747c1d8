// Package gateway implements the client-side proxy for sub-devices reachable
// through a shared gateway transport.
//
// # Model
//
// A Gateway wraps a Transport (the shared command-sending facility) and owns
// the collection of SubDevice proxies built from discovery records and
// model-capability configuration. Each SubDevice maintains a local property
// cache, relays commands through the gateway scoped to its identifier, and
// manages per-event subscriptions against an optional notification service.
//
//	Gateway (transport, push server)
//	├── SubDevice lumi.158d0001234567 (sensor_ht)
//	├── SubDevice lumi.158d0007654321 (plug)
//	└── ...
//
// # Property Cache
//
// The cache is a last-known view, not a source of truth: it is seeded from
// configuration defaults and updated by explicit Update calls and by push
// deliveries. Batched fetches are positional - results are zipped back onto
// property names in registration order.
//
// # Push Events
//
// SubscribeEvents registers every event the model declares with the
// notification service. Subscriptions succeed or fail independently;
// handles from earlier successes persist even when a later event in the
// same batch fails. PushCallback applies declared property values to the
// cache and fans out to registered callbacks in registration order.
//
// # Errors
//
// All failures surface as *DeviceError wrapping the low-level cause. The one
// deliberately degrading read path is GetFirmwareVersion, which falls back
// to the discovery-time version instead of failing the caller.
package gateway
