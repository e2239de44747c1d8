package descriptor

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateID signals a descriptor whose ID is already registered.
var ErrDuplicateID = errors.New("duplicate descriptor id")

// Setting is implemented by all setting descriptor kinds.
type Setting interface {
	// Setting returns the common setting descriptor fields.
	Setting() *SettingDescriptor
}

// Setting returns the descriptor itself. It makes SettingDescriptor and
// every type embedding it satisfy the Setting interface.
func (d *SettingDescriptor) Setting() *SettingDescriptor {
	return d
}

// Registry is the capability surface of one device: an insertion-ordered
// collection of descriptors with unique IDs. Concrete devices populate a
// registry during construction and hand it to generic consumers.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

func (r *Registry) add(id string, entry any) error {
	if id == "" {
		return errors.New("descriptor id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	r.entries[id] = entry
	r.order = append(r.order, id)
	return nil
}

// AddSensor registers a sensor descriptor.
func (r *Registry) AddSensor(d *SensorDescriptor) error {
	return r.add(d.ID, d)
}

// AddSetting registers a setting descriptor of any kind.
func (r *Registry) AddSetting(s Setting) error {
	return r.add(s.Setting().ID, s)
}

// AddAction registers an action descriptor.
func (r *Registry) AddAction(d *ActionDescriptor) error {
	return r.add(d.ID, d)
}

// Get returns the descriptor registered under id.
func (r *Registry) Get(id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns every registered descriptor in registration order.
func (r *Registry) All() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]any, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// Sensors returns the registered sensor descriptors in registration order.
func (r *Registry) Sensors() []*SensorDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*SensorDescriptor
	for _, id := range r.order {
		if d, ok := r.entries[id].(*SensorDescriptor); ok {
			result = append(result, d)
		}
	}
	return result
}

// Settings returns the registered setting descriptors in registration order.
func (r *Registry) Settings() []Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Setting
	for _, id := range r.order {
		if s, ok := r.entries[id].(Setting); ok {
			result = append(result, s)
		}
	}
	return result
}

// Actions returns the registered action descriptors in registration order.
func (r *Registry) Actions() []*ActionDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*ActionDescriptor
	for _, id := range r.order {
		if d, ok := r.entries[id].(*ActionDescriptor); ok {
			result = append(result, d)
		}
	}
	return result
}

// Embed merges another registry into this one, prefixing every descriptor
// ID and property key with "<name>__". This provides a single capability
// surface for devices composed of multiple status containers.
func (r *Registry) Embed(name string, other *Registry) error {
	for _, entry := range other.All() {
		var err error
		switch d := entry.(type) {
		case *SensorDescriptor:
			c := *d
			c.ID = name + "__" + d.ID
			c.Property = name + "__" + d.Property
			err = r.AddSensor(&c)
		case *BooleanSettingDescriptor:
			c := *d
			prefixSetting(&c.SettingDescriptor, name)
			err = r.AddSetting(&c)
		case *EnumSettingDescriptor:
			c := *d
			prefixSetting(&c.SettingDescriptor, name)
			err = r.AddSetting(&c)
		case *NumberSettingDescriptor:
			c := *d
			prefixSetting(&c.SettingDescriptor, name)
			err = r.AddSetting(&c)
		case *SettingDescriptor:
			c := *d
			prefixSetting(&c, name)
			err = r.AddSetting(&c)
		case *ActionDescriptor:
			c := *d
			c.ID = name + "__" + d.ID
			err = r.AddAction(&c)
		default:
			err = fmt.Errorf("unknown descriptor kind %T", entry)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func prefixSetting(d *SettingDescriptor, name string) {
	d.ID = name + "__" + d.ID
	d.Property = name + "__" + d.Property
}
