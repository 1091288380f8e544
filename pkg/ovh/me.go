package ovh

import (
	"context"

	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// Me returns the account owning the credentials. Never cached.
func (a *API) Me(ctx context.Context) (User, error) {
	return get[User](ctx, a, proxy.NewPath("/me"), nil)
}

// Applications lists the ids of the account's API applications.
func (a *API) Applications(ctx context.Context) ([]int, error) {
	return get[[]int](ctx, a, proxy.NewPath("/me/api/application"), nil)
}

// Application returns one API application.
func (a *API) Application(ctx context.Context, id int) (Application, error) {
	return get[Application](ctx, a, proxy.NewPath("/me/api/application/%s", id), nil)
}

// DeleteApplication revokes an API application.
func (a *API) DeleteApplication(ctx context.Context, id int) error {
	_, err := a.caller.Delete(ctx, proxy.NewPath("/me/api/application/%s", id))
	return err
}
