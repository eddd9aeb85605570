// Package netdiscover resolves the local network interfaces Art-Net
// senders broadcast on and receivers must recognize as "this host," so a
// receiver can filter out its own outbound traffic (spec §4.3's
// loopback-filter step) and a broadcast output can resolve a named
// interface to its subnet broadcast address. Adapted from the teacher's
// internal/services/network interface enumeration, which served the same
// purpose for a UI interface picker; here it drives transport
// configuration instead of a dropdown.
package netdiscover

import (
	"fmt"
	"net"
)

// Interface describes one usable local network interface for Art-Net.
type Interface struct {
	Name      string
	Address   string // this host's IPv4 address on the interface
	Broadcast string // the interface's subnet broadcast address
}

// List returns every up, non-loopback IPv4 interface.
func List() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate network interfaces: %w", err)
	}

	var out []Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}

			broadcast := calculateBroadcast(ip4, ipNet.Mask)
			if broadcast == nil || broadcast.String() == ip4.String() {
				continue
			}

			out = append(out, Interface{
				Name:      iface.Name,
				Address:   ip4.String(),
				Broadcast: broadcast.String(),
			})
		}
	}
	return out, nil
}

// ResolveBroadcast returns the subnet broadcast address for a named
// interface, or "255.255.255.255" if ifaceName is empty (the global
// broadcast every interface can reach).
func ResolveBroadcast(ifaceName string) (string, error) {
	if ifaceName == "" {
		return "255.255.255.255", nil
	}

	ifaces, err := List()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Name == ifaceName {
			return iface.Broadcast, nil
		}
	}
	return "", fmt.Errorf("interface %q not found or has no usable IPv4 address", ifaceName)
}

// LocalIPs returns the set of this host's own IPv4 addresses (plus
// 127.0.0.1), for a receiver's self-origin loopback filter (spec §4.3).
func LocalIPs() (map[string]bool, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate network interfaces: %w", err)
	}

	out := map[string]bool{"127.0.0.1": true}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				out[ip4.String()] = true
			}
		}
	}
	return out, nil
}

// calculateBroadcast computes the broadcast address from an IPv4 address
// and its netmask.
func calculateBroadcast(ip net.IP, mask net.IPMask) net.IP {
	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}
	if len(mask) == 16 {
		mask = mask[12:16]
	}
	if len(mask) != 4 {
		return nil
	}

	broadcast := make(net.IP, 4)
	for i := 0; i < 4; i++ {
		broadcast[i] = ip4[i] | ^mask[i]
	}
	return broadcast
}
