package types

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/cedar-policy/cedar-validate/internal"
)

var errIPAddr = internal.ErrIPAddr

// IPAddr represents a Cedar ipaddr value: a single address or a CIDR range,
// IPv4 or IPv6.
type IPAddr struct {
	prefix netip.Prefix
}

// ParseIPAddr parses a Cedar ipaddr literal such as "127.0.0.1" or
// "10.0.0.0/8".
func ParseIPAddr(s string) (IPAddr, error) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return IPAddr{prefix: p}, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return IPAddr{}, fmt.Errorf("%w: %q: %w", errIPAddr, s, err)
	}
	return IPAddr{prefix: netip.PrefixFrom(addr, addr.BitLen())}, nil
}

func (p IPAddr) Equal(v Value) bool {
	o, ok := v.(IPAddr)
	return ok && p.prefix == o.prefix
}

func (p IPAddr) MarshalCedar() []byte { return []byte(fmt.Sprintf(`ip("%s")`, p.String())) }

func (p IPAddr) String() string {
	if p.prefix.Bits() == p.prefix.Addr().BitLen() {
		return p.prefix.Addr().String()
	}
	return p.prefix.String()
}

func (p IPAddr) hash() uint64 {
	b := p.prefix.Addr().As16()
	var h uint64 = 1469598103934665603
	for _, c := range b {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h ^ uint64(p.prefix.Bits())
}

// IsIPv4 reports whether the address is an IPv4 address.
func (p IPAddr) IsIPv4() bool { return p.prefix.Addr().Is4() }

// IsIPv6 reports whether the address is an IPv6 address.
func (p IPAddr) IsIPv6() bool { return p.prefix.Addr().Is6() && !p.prefix.Addr().Is4() }

// IsLoopback reports whether the address is a loopback address.
func (p IPAddr) IsLoopback() bool { return p.prefix.Addr().IsLoopback() }

// IsMulticast reports whether the address is a multicast address.
func (p IPAddr) IsMulticast() bool { return p.prefix.Addr().IsMulticast() }

// IsInRange reports whether p is entirely contained within other's range.
func (p IPAddr) IsInRange(other IPAddr) bool {
	return other.prefix.Contains(p.prefix.Addr()) && other.prefix.Bits() <= p.prefix.Bits()
}

func (p IPAddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(extValueJSON{Extn: &extn{Fn: "ip", Arg: p.String()}})
}

func (p *IPAddr) UnmarshalJSON(b []byte) error {
	v, err := unmarshalExtensionValue(b, "ip", ParseIPAddr)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
