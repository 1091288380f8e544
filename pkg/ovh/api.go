// Package ovh is the typed resource API used by the commands. Every call
// goes through a Caller, normally a *proxy.Proxy, so caching, invalidation
// and dry-run apply uniformly.
package ovh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/ovh-cli/pkg/logging"
	"github.com/Sternrassler/ovh-cli/pkg/proxy"
)

// Common errors returned by the API helpers.
var (
	ErrEmptyAddress     = errors.New("empty address provided")
	ErrUnresolvable     = errors.New("unable to resolve address")
	ErrNotDedicated     = errors.New("not a dedicated server")
	ErrVrackNotFound    = errors.New("vRack not found")
	ErrNoVrackInterface = errors.New("no vRack network interface")
	ErrBootIDNotFound   = errors.New("boot id not found")
	ErrInvalidIPBlock   = errors.New("invalid ip block")
)

// Caller is the generic verb contract of the caching proxy.
type Caller interface {
	Get(ctx context.Context, path proxy.Path, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, path proxy.Path, body any) (json.RawMessage, error)
	Put(ctx context.Context, path proxy.Path, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path proxy.Path) (json.RawMessage, error)
}

// HostResolver looks up the addresses of a host name. *net.Resolver implements it.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// API exposes OVH resources.
type API struct {
	caller   Caller
	resolver HostResolver
	logger   zerolog.Logger
}

// New returns an API over caller using the system resolver.
func New(caller Caller) *API {
	return &API{
		caller:   caller,
		resolver: net.DefaultResolver,
		logger:   logging.NewLogger("ovh"),
	}
}

// WithResolver replaces the DNS resolver.
func (a *API) WithResolver(r HostResolver) *API {
	a.resolver = r
	return a
}

// get performs a GET and decodes the JSON result into T.
func get[T any](ctx context.Context, a *API, path proxy.Path, params url.Values) (T, error) {
	var out T
	raw, err := a.caller.Get(ctx, path, params)
	if err != nil {
		return out, err
	}
	if err := decode(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// mutation decodes the result of a mutating call. A dry-run call returns
// no payload and yields nil.
func mutation[T any](path proxy.Path, raw json.RawMessage, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out T
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &out, nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
