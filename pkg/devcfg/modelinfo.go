package devcfg

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// GetPropertyExp is the retrieval method marker for properties fetched via
// the batched "extended get" call.
const GetPropertyExp = "get_property_exp"

// PropertySpec describes one cached property of a device model.
type PropertySpec struct {
	// Property is the wire property name.
	Property string `yaml:"property"`

	// Name optionally remaps the property to a display name in the cache.
	Name string `yaml:"name"`

	// Default is the cache value before the first fetch.
	Default any `yaml:"default"`

	// Get names the retrieval method. Properties with GetPropertyExp are
	// fetched through the batched call.
	Get string `yaml:"get"`

	// Divisor optionally scales the raw fetched value.
	Divisor float64 `yaml:"divisor"`
}

// DisplayName returns the cache key for the property: the display name if
// configured, the wire name otherwise.
func (p PropertySpec) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Property
}

// PushEventSpec describes one push event a device model can emit.
type PushEventSpec struct {
	// Property optionally names a cached property the event applies to.
	Property string `yaml:"property"`

	// Value is the value applied to Property on delivery.
	Value any `yaml:"value"`

	// Extra is the raw event registration payload.
	Extra string `yaml:"extra"`

	// Event optionally overrides the event name sent to the notification
	// service.
	Event string `yaml:"event"`

	// CommandExtra is an optional command payload for the subscription.
	CommandExtra string `yaml:"command_extra"`

	// TriggerValue is an optional trigger threshold.
	TriggerValue *int `yaml:"trigger_value"`
}

// PushEventMap maps event names to their specs, preserving YAML document
// order. Declaration order determines subscription order.
type PushEventMap struct {
	names  []string
	events map[string]PushEventSpec
}

// UnmarshalYAML decodes a YAML mapping while recording key order.
func (m *PushEventMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("push_properties: expected mapping, got %v", node.Kind)
	}

	m.names = nil
	m.events = make(map[string]PushEventSpec, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("push_properties: %w", err)
		}
		var spec PushEventSpec
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("push_properties %q: %w", name, err)
		}
		if _, exists := m.events[name]; exists {
			return fmt.Errorf("push_properties: duplicate event %q", name)
		}
		m.names = append(m.names, name)
		m.events[name] = spec
	}
	return nil
}

// Names returns the event names in declaration order.
func (m *PushEventMap) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Get returns the spec for an event name.
func (m *PushEventMap) Get(name string) (PushEventSpec, bool) {
	spec, ok := m.events[name]
	return spec, ok
}

// Len returns the number of declared events.
func (m *PushEventMap) Len() int {
	return len(m.names)
}

// ModelInfo is the capability configuration for one device model.
type ModelInfo struct {
	// Model is the device model identifier.
	Model string `yaml:"model"`

	// Name is the human-readable model name.
	Name string `yaml:"name"`

	// Type is the device type name.
	Type string `yaml:"type"`

	// ZigbeeID is the zigbee model tag used in event subscriptions.
	ZigbeeID string `yaml:"zigbee_id"`

	// BatteryPowered indicates battery power. Unset means true.
	BatteryPowered *bool `yaml:"battery_powered"`

	// Properties lists the cached properties in fetch order.
	Properties []PropertySpec `yaml:"properties"`

	// Setter names the property write command, if the model has one.
	Setter string `yaml:"setter"`

	// PushEvents declares the push events the model can emit.
	PushEvents PushEventMap `yaml:"push_properties"`
}

// IsBatteryPowered returns the battery flag, defaulting to true.
func (m *ModelInfo) IsBatteryPowered() bool {
	if m.BatteryPowered == nil {
		return true
	}
	return *m.BatteryPowered
}
