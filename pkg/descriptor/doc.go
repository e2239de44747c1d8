// Package descriptor implements the capability descriptor schema.
//
// Descriptors are declarative metadata describing one exposed capability of a
// device: an invokable action, a read-only sensor, or a read-write setting.
// They are independent of any UI and can be used to build generic, dynamic
// user interfaces without knowing the concrete device class.
//
// # Descriptor Kinds
//
//	ActionDescriptor   invokable command, with optional input specs
//	SensorDescriptor   read-only value, keyed into the device property cache
//	SettingDescriptor  read-write value with a typed cast (bool/enum/number)
//
// Descriptors are side-effect-free value objects. They hold no device state,
// only references (by name or handler) to where state and behavior live on
// the owning device. Once constructed they are safe to share and read
// concurrently.
//
// # Identity
//
// A descriptor's ID is unique within the set of descriptors exposed by one
// device. The Registry enforces this invariant and preserves registration
// order for the capability surface it returns.
//
// # Dynamic Constraints
//
// Settings whose legal range or choice set depends on runtime device state
// are resolved through the RangeProvider and ChoicesProvider interfaces
// implemented by the owning device, rather than through string-named
// attribute lookups. ResolveRange and ResolveChoices perform the resolution
// at read time.
package descriptor
