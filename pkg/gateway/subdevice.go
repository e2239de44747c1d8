package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zigbridge/zigbridge-go/pkg/devcfg"
	"github.com/zigbridge/zigbridge-go/pkg/log"
)

// SubDeviceInfo is the immutable discovery record for one sub-device.
type SubDeviceInfo struct {
	// SID is the stable sub-device identifier.
	SID string

	// TypeID is the numeric device type code.
	TypeID int

	// Unknown and Unknown2 are reserved discovery fields.
	Unknown  int
	Unknown2 int

	// FWVersion is the firmware version reported at discovery time.
	FWVersion int
}

// SubDevice is the stateful proxy for one physical sub-device. It is owned
// by exactly one gateway and holds a non-owning back-reference to it.
//
// All mutable state (property cache, cached battery/voltage/firmware,
// subscription handles, callbacks) is guarded by an internal lock, so a
// SubDevice is safe for concurrent use: command calls and push deliveries
// may arrive from different goroutines.
type SubDevice struct {
	mu sync.RWMutex

	gw  *Gateway
	sid string

	// Immutable after construction.
	model          string
	name           string
	zigbeeModel    string
	deviceType     string
	setter         string
	batteryPowered bool

	// batchFetch lists the properties retrieved through the batched call,
	// in registration order. The order is load-bearing: batched responses
	// are positional.
	batchFetch []devcfg.PropertySpec

	// pushEvents declares the push events for this model, in declaration
	// order.
	pushEvents devcfg.PushEventMap

	// Mutable state.
	props    map[string]any
	battery  *int
	voltage  *float64
	fwVer    int
	eventIDs []string

	callbacks     map[string]Callback
	callbackOrder []string
}

// Callback receives push deliveries for a sub-device.
type Callback func(action string, params any)

const unknown = "unknown"

func newSubDevice(gw *Gateway, info SubDeviceInfo, modelInfo *devcfg.ModelInfo) *SubDevice {
	var cfg devcfg.ModelInfo
	if modelInfo != nil {
		cfg = *modelInfo
	}

	dev := &SubDevice{
		gw:             gw,
		sid:            info.SID,
		model:          orUnknown(cfg.Model),
		name:           orUnknown(cfg.Name),
		zigbeeModel:    orUnknown(cfg.ZigbeeID),
		deviceType:     cfg.Type,
		setter:         cfg.Setter,
		batteryPowered: cfg.IsBatteryPowered(),
		fwVer:          info.FWVersion,
		pushEvents:     cfg.PushEvents,
		props:          make(map[string]any),
		callbacks:      make(map[string]Callback),
	}

	for _, prop := range cfg.Properties {
		dev.props[prop.DisplayName()] = prop.Default
		if prop.Get == devcfg.GetPropertyExp {
			dev.batchFetch = append(dev.batchFetch, prop)
		}
	}

	return dev
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// SID returns the sub-device identifier.
func (s *SubDevice) SID() string {
	return s.sid
}

// Model returns the device model identifier.
func (s *SubDevice) Model() string {
	return s.model
}

// Name returns the device name combined with its identifier.
func (s *SubDevice) Name() string {
	return fmt.Sprintf("%s (%s)", s.name, s.sid)
}

// ZigbeeModel returns the zigbee model tag.
func (s *SubDevice) ZigbeeModel() string {
	return s.zigbeeModel
}

// DeviceType returns the device type name from configuration.
func (s *SubDevice) DeviceType() string {
	return s.deviceType
}

// Setter returns the configured property write command, if any.
func (s *SubDevice) Setter() string {
	return s.setter
}

// FirmwareVersion returns the cached firmware version.
func (s *SubDevice) FirmwareVersion() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fwVer
}

// Status returns a copy of the property cache.
func (s *SubDevice) Status() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	props := make(map[string]any, len(s.props))
	for k, v := range s.props {
		props[k] = v
	}
	return props
}

// Property returns one cached property value.
func (s *SubDevice) Property(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.props[name]
	return v, ok
}

// String implements fmt.Stringer.
func (s *SubDevice) String() string {
	return fmt.Sprintf("<SubDevice %s: %s, model: %s, zigbee: %s, fw: %d>",
		s.deviceType, s.sid, s.model, s.zigbeeModel, s.FirmwareVersion())
}

// Update refreshes all properties registered for the batched fetch. The
// response is positional: values are zipped back onto display names in
// registration order, applying configured divisors. Nothing happens when
// the model registers no batched properties.
func (s *SubDevice) Update(ctx context.Context) error {
	if len(s.batchFetch) == 0 {
		return nil
	}

	names := make([]string, len(s.batchFetch))
	for i, prop := range s.batchFetch {
		names[i] = prop.Property
	}

	values, err := s.GetPropertyExp(ctx, names)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, prop := range s.batchFetch {
		value := values[i]
		if prop.Divisor != 0 {
			raw, ok := toFloat64(value)
			if !ok {
				return deviceErrorf(nil,
					"one or more unexpected results while fetching properties %v: %v on model %s",
					names, values, s.model)
			}
			value = raw / prop.Divisor
		}
		s.props[prop.DisplayName()] = value
	}
	return nil
}

// Send relays a command to the sub-device, scoped by its identifier.
func (s *SubDevice) Send(ctx context.Context, command string) ([]any, error) {
	response, err := s.gw.Send(ctx, command, []any{s.sid}, nil)
	if err != nil {
		return nil, deviceErrorf(err,
			"got an exception while sending command %s on model %s", command, s.model)
	}
	return response, nil
}

// SendArg relays a command with arguments to the sub-device. The identifier
// travels in the extra-parameters map.
func (s *SubDevice) SendArg(ctx context.Context, command string, arguments any) ([]any, error) {
	response, err := s.gw.Send(ctx, command, arguments, map[string]any{"sid": s.sid})
	if err != nil {
		return nil, deviceErrorf(err,
			"got an exception while sending command %q with arguments %v on model %s",
			command, arguments, s.model)
	}
	return response, nil
}

// GetProperty fetches the value of a single property. An empty response is
// an error: the transport call succeeded but returned nothing usable.
func (s *SubDevice) GetProperty(ctx context.Context, property string) ([]any, error) {
	response, err := s.gw.Send(ctx, "get_device_prop", []any{s.sid, property}, nil)
	if err != nil {
		return nil, deviceErrorf(err,
			"got an exception while fetching property %s on model %s", property, s.model)
	}

	if len(response) == 0 {
		return nil, deviceErrorf(nil,
			"empty response while fetching property %q: %v on model %s",
			property, response, s.model)
	}
	return response, nil
}

// GetPropertyExp fetches a batch of properties in one round trip. The
// response is positional and must contain exactly one value per requested
// property.
func (s *SubDevice) GetPropertyExp(ctx context.Context, properties []string) ([]any, error) {
	params := make([]any, 0, len(properties)+1)
	params = append(params, s.sid)
	for _, p := range properties {
		params = append(params, p)
	}

	response, err := s.gw.Send(ctx, "get_device_prop_exp", []any{params}, nil)
	if err != nil || len(response) == 0 {
		return nil, deviceErrorf(err,
			"got an exception while fetching properties %v on model %s", properties, s.model)
	}

	values, ok := response[len(response)-1].([]any)
	if !ok {
		return nil, deviceErrorf(nil,
			"got an exception while fetching properties %v on model %s", properties, s.model)
	}

	if len(values) != len(properties) {
		return nil, deviceErrorf(nil,
			"unexpected result while fetching properties %v: %v on model %s",
			properties, values, s.model)
	}
	return values, nil
}

// SetProperty writes a single property of the sub-device.
func (s *SubDevice) SetProperty(ctx context.Context, property string, value any) ([]any, error) {
	params := map[string]any{"sid": s.sid, property: value}
	response, err := s.gw.Send(ctx, "set_device_prop", params, nil)
	if err != nil {
		return nil, deviceErrorf(err,
			"got an exception while setting property %s to value %v on model %s",
			property, value, s.model)
	}
	return response, nil
}

// Unpair removes the sub-device from the gateway. The proxy keeps its
// cached state; discarding it is the caller's responsibility.
func (s *SubDevice) Unpair(ctx context.Context) error {
	_, err := s.Send(ctx, "remove_device")
	return err
}

// GetBattery reads the battery level in percent. Mains-powered devices
// return nil without a transport call. Gateway models lacking get_battery
// support log the condition and return the last cached value.
func (s *SubDevice) GetBattery(ctx context.Context) (*int, error) {
	if !s.batteryPowered {
		return nil, nil
	}

	if s.gw.Model() == ModelEU || s.gw.Model() == ModelZig3 {
		s.logEvent(log.Event{
			Category: log.CategoryWarning,
			Detail:   fmt.Sprintf("gateway model %q does not (yet) support get_battery", s.gw.Model()),
		})
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.battery, nil
	}

	response, err := s.Send(ctx, "get_battery")
	if err != nil {
		return nil, err
	}
	if len(response) == 0 {
		return nil, deviceErrorf(nil,
			"empty response while fetching battery on model %s", s.model)
	}

	level, ok := toInt(response[0])
	if !ok {
		return nil, deviceErrorf(nil,
			"unexpected battery response %v on model %s", response, s.model)
	}

	s.mu.Lock()
	s.battery = &level
	s.mu.Unlock()
	return &level, nil
}

// GetVoltage reads the battery voltage in volts. Only gateway models with
// voltage support issue a transport call; others log the condition and
// return the last cached value.
func (s *SubDevice) GetVoltage(ctx context.Context) (*float64, error) {
	if !s.batteryPowered {
		return nil, nil
	}

	if s.gw.Model() != ModelEU && s.gw.Model() != ModelZig3 {
		s.logEvent(log.Event{
			Category: log.CategoryWarning,
			Detail:   fmt.Sprintf("gateway model %q does not (yet) support get_voltage", s.gw.Model()),
		})
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.voltage, nil
	}

	response, err := s.GetProperty(ctx, "voltage")
	if err != nil {
		return nil, err
	}

	raw, ok := toFloat64(response[0])
	if !ok {
		return nil, deviceErrorf(nil,
			"unexpected voltage response %v on model %s", response, s.model)
	}

	volts := raw / 1000
	s.mu.Lock()
	s.voltage = &volts
	s.mu.Unlock()
	return &volts, nil
}

// GetFirmwareVersion reads the current firmware version. This is the one
// read path that degrades instead of failing: any error is logged and the
// cached version, seeded from the discovery record, is returned.
func (s *SubDevice) GetFirmwareVersion(ctx context.Context) int {
	response, err := s.GetProperty(ctx, "fw_ver")
	if err == nil {
		if version, ok := toInt(response[0]); ok {
			s.mu.Lock()
			s.fwVer = version
			s.mu.Unlock()
			return version
		}
		err = deviceErrorf(nil, "unexpected fw_ver response %v", response)
	}

	s.logEvent(log.Event{
		Category: log.CategoryWarning,
		Property: "fw_ver",
		Detail:   "get_firmware_version failed, returning firmware version from discovery info",
		Err:      err.Error(),
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fwVer
}

// logEvent stamps session and device identity onto an event and captures it.
func (s *SubDevice) logEvent(event log.Event) {
	event.Timestamp = time.Now()
	event.SessionID = s.gw.SessionID()
	event.GatewayModel = s.gw.Model()
	event.SID = s.sid
	s.gw.logger.Log(event)
}

func toInt(v any) (int, bool) {
	f, ok := toFloat64(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
