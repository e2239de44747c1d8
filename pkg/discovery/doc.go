// Package discovery finds gateways on the local network via mDNS.
//
// Gateways announce a service of type "_miio._udp" whose instance name
// encodes the device model and identifier:
//
//	lumi-gateway-v3_miio12345678._miio._udp.local.
//
// ParseInstanceName turns the instance label into a model identifier
// ("lumi.gateway.v3") and numeric device id. Browser resolves announcements
// into GatewayService records carrying the reachable addresses and port.
//
// Discovery yields the information needed to open a transport to a gateway;
// it does not open one itself.
package discovery
