package discovery

import (
	"context"
	"net"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindByDeviceID when the context carries no
	// deadline. Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
	}
}

// Browser browses mDNS for gateway announcements.
type Browser struct {
	config BrowserConfig

	// browse starts the mDNS query and feeds announcements into the
	// entry channels until the context ends. Tests replace it to drive
	// the aggregation loop with scripted announcements.
	browse func(ctx context.Context, entries, removed chan *zeroconf.ServiceEntry)
}

// NewBrowser creates a browser with the given configuration.
func NewBrowser(config BrowserConfig) *Browser {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	b := &Browser{config: config}
	b.browse = func(ctx context.Context, entries, removed chan *zeroconf.ServiceEntry) {
		_ = zeroconf.Browse(ctx, ServiceTypeMiio, Domain, entries, removed, b.browserOptions()...)
	}
	return b
}

// Browse searches for gateways until the context is cancelled. Each
// gateway is emitted once; announcements from additional interfaces are
// merged into the already-emitted record. The returned channel closes
// when browsing stops.
func (b *Browser) Browse(ctx context.Context) (<-chan *GatewayService, error) {
	out := make(chan *GatewayService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		seen := make(map[string]*GatewayService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToGateway(entry)
				if svc == nil {
					continue
				}

				if existing, found := seen[svc.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}

				seen[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go b.browse(ctx, entries, removed)

	return out, nil
}

// FindByDeviceID searches for a specific gateway. Returns when found, or
// ErrNotFound when the context or the configured browse timeout expires.
func (b *Browser) FindByDeviceID(ctx context.Context, deviceID uint64) (*GatewayService, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.BrowseTimeout)
		defer cancel()
	}

	found, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for svc := range found {
		if svc.DeviceID == deviceID {
			return svc, nil
		}
	}
	return nil, ErrNotFound
}

// browserOptions returns zeroconf client options based on config.
func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToGateway converts a zeroconf entry to a GatewayService.
// Non-gateway miio announcements and foreign services are dropped.
func entryToGateway(entry *zeroconf.ServiceEntry) *GatewayService {
	model, deviceID, err := ParseInstanceName(entry.Instance)
	if err != nil || !IsGatewayModel(model) {
		return nil
	}

	addrs := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	addrs = append(addrs, entry.AddrIPv4...)
	addrs = append(addrs, entry.AddrIPv6...)

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &GatewayService{
		InstanceName: entry.Instance,
		Model:        model,
		DeviceID:     deviceID,
		Host:         entry.HostName,
		Addresses:    addrs,
		Port:         port,
	}
}

// mergeAddresses appends addresses not already present.
func mergeAddresses(existing, incoming []net.IP) []net.IP {
	for _, addr := range incoming {
		duplicate := false
		for _, have := range existing {
			if have.Equal(addr) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			existing = append(existing, addr)
		}
	}
	return existing
}
