package ovh

import (
	"context"
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

var ovhHostname = regexp.MustCompile(`^ns[0-9]+\.ip-[0-9]+-[0-9]+-[0-9]+\.(net|eu)$`)

// IsOVHHostname reports whether host is a default OVH server name such as
// ns123.ip-1-2-3.eu, which is also the server's service name.
func IsOVHHostname(host string) bool {
	return ovhHostname.MatchString(host)
}

// ResolveServer turns a host name or address into a dedicated server name.
//
// OVH host names are returned as is. Anything else is resolved through DNS
// and the first address must be routed to a dedicated server.
func (a *API) ResolveServer(ctx context.Context, address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrEmptyAddress
	}
	if IsOVHHostname(address) {
		return address, nil
	}

	ip := address
	if _, err := netip.ParseAddr(address); err != nil {
		addrs, err := a.resolver.LookupHost(ctx, address)
		if err != nil || len(addrs) == 0 {
			return "", fmt.Errorf("%w: %s", ErrUnresolvable, address)
		}
		ip = addrs[0]
	}

	info, err := a.IP(ctx, ip)
	if err != nil {
		return "", err
	}
	if info.Type != "dedicated" || info.RoutedTo.ServiceName == "" {
		return "", fmt.Errorf("%w: %q", ErrNotDedicated, address)
	}

	a.logger.Debug().Str("address", address).Str("server", info.RoutedTo.ServiceName).Msg("Address resolved")
	return info.RoutedTo.ServiceName, nil
}

// ServerReverse returns the reverse DNS of a server without the trailing
// dot, or "" when the server cannot be read.
func (a *API) ServerReverse(ctx context.Context, name string) string {
	server, err := a.Server(ctx, name)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(server.Reverse, ".")
}
