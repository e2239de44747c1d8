package descriptor

import "context"

// ValueType is a semantic type tag for a descriptor's value.
type ValueType uint8

const (
	ValueTypeUnknown ValueType = iota
	ValueTypeBool
	ValueTypeInt
	ValueTypeFloat
	ValueTypeString
	ValueTypeEnum
)

// String returns the value type name.
func (v ValueType) String() string {
	names := []string{"unknown", "bool", "int", "float", "string", "enum"}
	if int(v) < len(names) {
		return names[v]
	}
	return "unknown"
}

// Extras is an insertion-ordered string-to-value side channel for additional
// descriptor metadata that has no dedicated field.
type Extras struct {
	keys   []string
	values map[string]any
}

// Set stores a value under key, preserving first-insertion order.
func (e *Extras) Set(key string, value any) {
	if e.values == nil {
		e.values = make(map[string]any)
	}
	if _, exists := e.values[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// Get returns the value stored under key.
func (e *Extras) Get(key string) (any, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (e *Extras) Keys() []string {
	keys := make([]string, len(e.keys))
	copy(keys, e.keys)
	return keys
}

// Len returns the number of entries.
func (e *Extras) Len() int {
	return len(e.keys)
}

// Descriptor is the base for all capability descriptors.
type Descriptor struct {
	// ID uniquely identifies the capability within one device.
	ID string

	// Name is the human-readable label.
	Name string

	// ValueType is an optional semantic type tag.
	ValueType ValueType

	// Extras carries additional metadata.
	Extras Extras
}

// ActionHandler is the function signature for action handlers.
type ActionHandler func(ctx context.Context, args ...any) (any, error)

// InputSpec describes one input of an action.
type InputSpec struct {
	// Name is the input name.
	Name string

	// Type is the expected value type.
	Type ValueType
}

// ActionDescriptor describes an invokable command exposed by the device.
type ActionDescriptor struct {
	Descriptor

	// MethodName names the method on the owning device, if bound by name.
	MethodName string

	// Method is the handler, if bound directly.
	Method ActionHandler

	// Inputs describes the ordered action inputs, if any.
	Inputs []InputSpec
}

// SensorDescriptor describes a read-only value exposed by the device.
type SensorDescriptor struct {
	Descriptor

	// Property is the key into the device's cached property store.
	Property string

	// Unit is the unit of measurement, if any.
	Unit string
}
