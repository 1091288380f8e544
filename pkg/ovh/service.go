package ovh

import (
	"context"

	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// Services lists the account's service ids.
func (a *API) Services(ctx context.Context) ([]int, error) {
	return get[[]int](ctx, a, proxy.NewPath("/service"), nil)
}

// Service returns one service. The shape depends on the product.
func (a *API) Service(ctx context.Context, id int) (map[string]any, error) {
	return get[map[string]any](ctx, a, proxy.NewPath("/service/%s", id), nil)
}
