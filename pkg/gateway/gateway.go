package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zigbridge/zigbridge-go/pkg/devcfg"
	"github.com/zigbridge/zigbridge-go/pkg/log"
	"github.com/zigbridge/zigbridge-go/pkg/push"
)

// Gateway models known to lack get_battery support. The same models are
// the only ones supporting voltage reads.
const (
	// ModelEU is the european gateway model.
	ModelEU = "lumi.gateway.mieu01"

	// ModelZig3 is the zigbee3 gateway model.
	ModelZig3 = "lumi.gateway.mgl03"
)

// Transport is the shared command-sending facility of a gateway. It is
// consumed, not provided, by this package: implementations own the wire
// protocol, encryption, timeouts, and retries.
//
// Send relays one command and blocks until the transport produces a
// response or fails. The response shape is command-dependent and known to
// the caller, not the transport.
type Transport interface {
	Send(ctx context.Context, command string, params any, extra map[string]any) ([]any, error)
}

// Config holds gateway construction options.
type Config struct {
	// Model is the gateway model identifier.
	Model string

	// PushServer is the notification service handle. May be nil; event
	// subscriptions then fail with a configuration error.
	PushServer push.Server

	// Logger receives captured gateway events. Nil disables capture.
	Logger log.Logger
}

// Gateway is the parent transport handle through which sub-device commands
// are relayed. It owns the sub-device collection; sub-devices hold a
// non-owning back-reference.
type Gateway struct {
	mu sync.RWMutex

	transport  Transport
	model      string
	pushServer push.Server
	logger     log.Logger
	sessionID  string

	// Sub-devices by sid, with registration order preserved.
	subdevices map[string]*SubDevice
	order      []string
}

// New creates a gateway over the given transport.
func New(transport Transport, cfg Config) (*Gateway, error) {
	if transport == nil {
		return nil, errors.New("gateway: transport must not be nil")
	}
	return &Gateway{
		transport:  transport,
		model:      cfg.Model,
		pushServer: cfg.PushServer,
		logger:     log.OrNoop(cfg.Logger),
		sessionID:  uuid.NewString(),
		subdevices: make(map[string]*SubDevice),
	}, nil
}

// Model returns the gateway model identifier.
func (g *Gateway) Model() string {
	return g.model
}

// SessionID returns the unique session identifier stamped into captured
// events.
func (g *Gateway) SessionID() string {
	return g.sessionID
}

// PushServer returns the notification service handle, or nil.
func (g *Gateway) PushServer() push.Server {
	return g.pushServer
}

// Send relays a command through the transport.
func (g *Gateway) Send(ctx context.Context, command string, params any, extra map[string]any) ([]any, error) {
	response, err := g.transport.Send(ctx, command, params, extra)

	event := log.Event{
		Timestamp:    time.Now(),
		SessionID:    g.sessionID,
		Category:     log.CategoryCommand,
		GatewayModel: g.model,
		Command:      command,
	}
	if err != nil {
		event.Category = log.CategoryError
		event.Err = err.Error()
	}
	g.logger.Log(event)

	return response, err
}

// NewSubDevice builds a sub-device proxy from a discovery record and an
// optional model configuration, and registers it with the gateway. No
// network I/O occurs. An existing proxy for the same sid is replaced.
func (g *Gateway) NewSubDevice(info SubDeviceInfo, modelInfo *devcfg.ModelInfo) *SubDevice {
	dev := newSubDevice(g, info, modelInfo)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.subdevices[info.SID]; !exists {
		g.order = append(g.order, info.SID)
	}
	g.subdevices[info.SID] = dev
	return dev
}

// SubDevice returns the proxy registered for sid.
func (g *Gateway) SubDevice(sid string) (*SubDevice, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	dev, ok := g.subdevices[sid]
	return dev, ok
}

// SubDevices returns all registered proxies in registration order.
func (g *Gateway) SubDevices() []*SubDevice {
	g.mu.RLock()
	defer g.mu.RUnlock()

	devs := make([]*SubDevice, 0, len(g.order))
	for _, sid := range g.order {
		devs = append(devs, g.subdevices[sid])
	}
	return devs
}

// RemoveSubDevice releases the proxy's event subscriptions and drops it
// from the gateway. The unsubscribe error, if any, is returned after the
// proxy has been dropped.
func (g *Gateway) RemoveSubDevice(ctx context.Context, sid string) error {
	g.mu.Lock()
	dev, ok := g.subdevices[sid]
	if ok {
		delete(g.subdevices, sid)
		for i, s := range g.order {
			if s == sid {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
	}
	g.mu.Unlock()

	if !ok {
		return nil
	}
	return dev.UnsubscribeEvents(ctx)
}

// Teardown unsubscribes every sub-device's events and clears the
// collection. Unsubscribe runs before the proxies are dropped so no handle
// outlives its device.
func (g *Gateway) Teardown(ctx context.Context) error {
	devs := g.SubDevices()

	var errs []error
	for _, dev := range devs {
		if err := dev.UnsubscribeEvents(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	g.mu.Lock()
	g.subdevices = make(map[string]*SubDevice)
	g.order = nil
	g.mu.Unlock()

	return errors.Join(errs...)
}
