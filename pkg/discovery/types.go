package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Service constants for mDNS.
const (
	// ServiceTypeMiio is the service type gateways announce.
	ServiceTypeMiio = "_miio._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the port gateways listen on.
	DefaultPort = 54321
)

// BrowseTimeout is the default timeout for mDNS browsing.
const BrowseTimeout = 10 * time.Second

// Discovery errors.
var (
	// ErrNotMiioService signals an instance name without the miio marker.
	ErrNotMiioService = errors.New("not a miio service instance")

	// ErrNotFound signals that no matching gateway was discovered before
	// the context expired.
	ErrNotFound = errors.New("gateway not found")
)

// miioMarker separates the model part from the device id in instance names.
const miioMarker = "_miio"

// GatewayService describes one discovered gateway announcement.
type GatewayService struct {
	// InstanceName is the raw mDNS instance label.
	InstanceName string

	// Model is the decoded device model, e.g. "lumi.gateway.v3".
	Model string

	// DeviceID is the numeric device identifier from the announcement.
	DeviceID uint64

	// Host is the announced hostname.
	Host string

	// Addresses are the reachable IP addresses.
	Addresses []net.IP

	// Port is the announced port.
	Port int
}

// ParseInstanceName decodes a miio mDNS instance label into the device
// model and numeric id. Instance labels look like
// "lumi-gateway-v3_miio12345678": the model with dots flattened to
// dashes, then the marker, then the decimal device id.
func ParseInstanceName(instance string) (model string, deviceID uint64, err error) {
	idx := strings.LastIndex(instance, miioMarker)
	if idx <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrNotMiioService, instance)
	}

	model = strings.ReplaceAll(instance[:idx], "-", ".")

	idPart := instance[idx+len(miioMarker):]
	if idPart != "" {
		deviceID, err = strconv.ParseUint(idPart, 10, 64)
		if err != nil {
			return "", 0, fmt.Errorf("%w: bad device id in %q", ErrNotMiioService, instance)
		}
	}

	return model, deviceID, nil
}

// IsGatewayModel returns true for models this module can proxy sub-devices
// through.
func IsGatewayModel(model string) bool {
	return strings.Contains(model, "gateway") || strings.Contains(model, "acpartner")
}
