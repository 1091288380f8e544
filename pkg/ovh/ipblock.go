package ovh

import (
	"fmt"
	"net/netip"
	"strings"
)

// ParseBlock parses "1.2.3.0/24", "2001:db8::/56" or a bare address.
func ParseBlock(block string) (netip.Prefix, error) {
	if !strings.Contains(block, "/") {
		addr, err := netip.ParseAddr(block)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidIPBlock, block)
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	prefix, err := netip.ParsePrefix(block)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidIPBlock, block)
	}
	return prefix.Masked(), nil
}

// BlockFirstIP returns the first usable address of a block: the network
// address plus one, or the address itself for a single-address block.
func BlockFirstIP(block string) (netip.Addr, error) {
	prefix, err := ParseBlock(block)
	if err != nil {
		return netip.Addr{}, err
	}
	if prefix.IsSingleIP() {
		return prefix.Addr(), nil
	}
	return prefix.Addr().Next(), nil
}

// BlockGateway returns the default gateway OVH assigns to a block.
//
// IPv4: the last usable address of the enclosing /24.
// IPv6: the broadcast of the enclosing /56 written with "ff" groups,
// e.g. 2001:db8:0:ff:ff:ff:ff:ff.
func BlockGateway(block string) (string, error) {
	prefix, err := ParseBlock(block)
	if err != nil {
		return "", err
	}

	if prefix.Addr().Is4() {
		network, _ := prefix.Addr().Prefix(24)
		b := network.Addr().As4()
		b[3] = 254
		return netip.AddrFrom4(b).String(), nil
	}

	network, _ := prefix.Addr().Prefix(56)
	b := network.Addr().As16()
	for i := 7; i < 16; i++ {
		b[i] = 0xff
	}
	return strings.ReplaceAll(netip.AddrFrom16(b).String(), ":ffff", ":ff"), nil
}

// BlockInfo is the first address and gateway of a block.
type BlockInfo struct {
	FirstIP string `json:"firstIp"`
	Gateway string `json:"gateway"`
}

// DescribeBlock computes BlockInfo for block.
func DescribeBlock(block string) (BlockInfo, error) {
	first, err := BlockFirstIP(block)
	if err != nil {
		return BlockInfo{}, err
	}
	gw, err := BlockGateway(block)
	if err != nil {
		return BlockInfo{}, err
	}
	return BlockInfo{FirstIP: first.String(), Gateway: gw}, nil
}
