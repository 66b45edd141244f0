package policy

import (
	"fmt"
	"net/netip"
	"strings"
)

// IPAddress is a network in CIDR form, optionally named.
// The network always has its host bits cleared.
type IPAddress struct {
	network netip.Prefix
	name    string
}

// NewIPAddress parses a host ("10.0.0.5") or CIDR ("10.0.0.5/24") address,
// IPv4 or IPv6, and normalizes it to its containing network.
// A bare host becomes a /32 (or /128) network.
func NewIPAddress(address, name string) (IPAddress, error) {
	address = strings.TrimSpace(address)

	var prefix netip.Prefix
	if strings.Contains(address, "/") {
		p, err := netip.ParsePrefix(address)
		if err != nil {
			return IPAddress{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, address, err)
		}
		prefix = p.Masked()
	} else {
		a, err := netip.ParseAddr(address)
		if err != nil {
			return IPAddress{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, address, err)
		}
		prefix = netip.PrefixFrom(a, a.BitLen())
	}

	return IPAddress{network: prefix, name: name}, nil
}

// MustIPAddress is like NewIPAddress but panics on error. For tests and
// package-level tables.
func MustIPAddress(address, name string) IPAddress {
	a, err := NewIPAddress(address, name)
	if err != nil {
		panic(err)
	}
	return a
}

func (a IPAddress) Network() netip.Prefix { return a.network }
func (a IPAddress) Name() string          { return a.name }

// Is6 reports whether the address is an IPv6 network.
func (a IPAddress) Is6() bool { return a.network.Addr().Is6() }

func (a IPAddress) String() string {
	if a.name != "" {
		return a.name
	}
	return a.network.String()
}

func (a IPAddress) GoString() string {
	if a.name != "" {
		return fmt.Sprintf("<IPAddress %s(%s)>", a.network, a.name)
	}
	return fmt.Sprintf("<IPAddress %s>", a.network)
}
