package netdiscover

import (
	"net"
	"testing"
)

func TestCalculateBroadcast(t *testing.T) {
	tests := []struct {
		name     string
		ip       net.IP
		mask     net.IPMask
		expected string
	}{
		{"Class C network", net.ParseIP("192.168.1.100"), net.IPv4Mask(255, 255, 255, 0), "192.168.1.255"},
		{"Class B network", net.ParseIP("172.16.5.10"), net.IPv4Mask(255, 255, 0, 0), "172.16.255.255"},
		{"Class A network", net.ParseIP("10.0.0.5"), net.IPv4Mask(255, 0, 0, 0), "10.255.255.255"},
		{"/28 subnet", net.ParseIP("192.168.1.20"), net.IPv4Mask(255, 255, 255, 240), "192.168.1.31"},
		{"/30 subnet", net.ParseIP("192.168.1.5"), net.IPv4Mask(255, 255, 255, 252), "192.168.1.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calculateBroadcast(tt.ip, tt.mask)
			if result == nil {
				t.Fatalf("calculateBroadcast returned nil")
			}
			if result.String() != tt.expected {
				t.Errorf("calculateBroadcast(%s, %v) = %s, want %s", tt.ip, tt.mask, result.String(), tt.expected)
			}
		})
	}
}

func TestCalculateBroadcast_NilInputs(t *testing.T) {
	if result := calculateBroadcast(nil, net.IPv4Mask(255, 255, 255, 0)); result != nil {
		t.Error("calculateBroadcast(nil, mask) should return nil")
	}
	if result := calculateBroadcast(net.ParseIP("192.168.1.1"), nil); result != nil {
		t.Error("calculateBroadcast(ip, nil) should return nil")
	}
	if result := calculateBroadcast(net.ParseIP("::1"), net.IPv4Mask(255, 255, 255, 0)); result != nil {
		t.Error("calculateBroadcast(ipv6, mask) should return nil")
	}
}

func TestResolveBroadcast_EmptyInterfaceIsGlobal(t *testing.T) {
	addr, err := ResolveBroadcast("")
	if err != nil {
		t.Fatalf("ResolveBroadcast(\"\") returned error: %v", err)
	}
	if addr != "255.255.255.255" {
		t.Errorf("ResolveBroadcast(\"\") = %q, want 255.255.255.255", addr)
	}
}

func TestResolveBroadcast_UnknownInterfaceErrors(t *testing.T) {
	_, err := ResolveBroadcast("definitely-not-a-real-interface-0")
	if err == nil {
		t.Error("expected an error resolving an unknown interface")
	}
}

func TestLocalIPs_IncludesLoopback(t *testing.T) {
	ips, err := LocalIPs()
	if err != nil {
		t.Fatalf("LocalIPs() returned error: %v", err)
	}
	if !ips["127.0.0.1"] {
		t.Error("LocalIPs() should always include 127.0.0.1")
	}
}

func TestList_EveryEntryHasUsableFields(t *testing.T) {
	ifaces, err := List()
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	for _, iface := range ifaces {
		if iface.Name == "" {
			t.Error("interface has empty name")
		}
		if iface.Address == "" {
			t.Error("interface has empty address")
		}
		if iface.Broadcast == "" {
			t.Error("interface has empty broadcast")
		}
	}
}
