package ovh

import (
	"context"
	"net/url"

	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// IPs lists the account's IP blocks, optionally filtered (e.g. type=failover).
func (a *API) IPs(ctx context.Context, params url.Values) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/ip"), params)
}

// FailoverIPs lists the failover IP blocks.
func (a *API) FailoverIPs(ctx context.Context) ([]string, error) {
	return a.IPs(ctx, url.Values{"type": {"failover"}})
}

// IP returns the details of an IP or block, e.g. "1.2.3.4" or "1.2.3.0/24".
func (a *API) IP(ctx context.Context, block string) (IP, error) {
	return get[IP](ctx, a, proxy.NewPath("/ip/%s", block), nil)
}

// MoveIP routes a block to another service.
func (a *API) MoveIP(ctx context.Context, block, destination string) (*IPTask, error) {
	path := proxy.NewPath("/ip/%s/move", block)
	raw, err := a.caller.Post(ctx, path, map[string]any{"nexthop": nil, "to": destination})
	return mutation[IPTask](path, raw, err)
}

// Reverses lists the addresses of a block having a reverse.
func (a *API) Reverses(ctx context.Context, block string) ([]string, error) {
	return get[[]string](ctx, a, proxy.NewPath("/ip/%s/reverse", block), nil)
}

// Reverse returns the reverse of one address of a block.
func (a *API) Reverse(ctx context.Context, block, ip string) (IPReverse, error) {
	return get[IPReverse](ctx, a, proxy.NewPath("/ip/%s/reverse/%s", block, ip), nil)
}

// SetReverse sets the reverse of one address of a block.
func (a *API) SetReverse(ctx context.Context, block, ip, reverse string) (*IPReverse, error) {
	path := proxy.NewPath("/ip/%s/reverse", block)
	raw, err := a.caller.Post(ctx, path, IPReverse{IPReverse: ip, Reverse: reverse})
	return mutation[IPReverse](path, raw, err)
}

// DeleteReverse removes the reverse of one address of a block.
func (a *API) DeleteReverse(ctx context.Context, block, ip string) error {
	_, err := a.caller.Delete(ctx, proxy.NewPath("/ip/%s/reverse/%s", block, ip))
	return err
}
