// Package proxy sits between the resource API and the transport. It decides
// per call whether to serve a cached response, perform a live request and
// populate the cache, invalidate an entry, or simulate a mutation in dry-run
// mode.
//
// All calls are synchronous; a Proxy is not safe for concurrent use.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/ovh-cli/pkg/cache"
)

// DefaultTTL is used when Config.TTL is not positive.
const DefaultTTL = 24 * time.Hour

// Transport performs the live API call. path is already escaped.
// *client.Client implements it.
type Transport interface {
	Do(ctx context.Context, method, path string, query url.Values, body []byte) (json.RawMessage, error)
}

// Config holds the process-wide toggles. It is fixed for the lifetime of a Proxy.
type Config struct {
	// CacheDisabled bypasses the cache for every path
	CacheDisabled bool

	// DryRun prints mutating calls instead of sending them
	DryRun bool

	// TTL is the lifetime of new cache entries
	TTL time.Duration

	// DenyList overrides DefaultDenyList when non-nil
	DenyList []*regexp.Regexp

	// Output receives dry-run echoes (default: os.Stdout)
	Output io.Writer
}

// Proxy is the caching layer in front of the API transport.
type Proxy struct {
	transport  Transport
	store      cache.Store
	classifier *Classifier
	cfg        Config
	logger     zerolog.Logger
}

// New creates a proxy over transport and store.
func New(transport Transport, store cache.Store, cfg Config) (*Proxy, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	return &Proxy{
		transport:  transport,
		store:      store,
		classifier: NewClassifier(cfg.CacheDisabled, cfg.DenyList),
		cfg:        cfg,
		logger:     log.With().Str("component", "proxy").Logger(),
	}, nil
}

// Get reads path, from the cache when possible.
func (p *Proxy) Get(ctx context.Context, path Path, params url.Values) (json.RawMessage, error) {
	return p.dispatch(ctx, Request{Method: MethodGet, Path: path, Params: params})
}

// Post sends body to path. In dry-run mode it returns nil, nil.
func (p *Proxy) Post(ctx context.Context, path Path, body any) (json.RawMessage, error) {
	return p.dispatch(ctx, Request{Method: MethodPost, Path: path, Body: body})
}

// Put sends body to path. In dry-run mode it returns nil, nil.
func (p *Proxy) Put(ctx context.Context, path Path, body any) (json.RawMessage, error) {
	return p.dispatch(ctx, Request{Method: MethodPut, Path: path, Body: body})
}

// Delete deletes path. In dry-run mode it returns nil, nil.
func (p *Proxy) Delete(ctx context.Context, path Path) (json.RawMessage, error) {
	return p.dispatch(ctx, Request{Method: MethodDelete, Path: path})
}

// Config returns the proxy configuration.
func (p *Proxy) Config() Config {
	return p.cfg
}

// Do dispatches an arbitrary request.
func (p *Proxy) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	return p.dispatch(ctx, req)
}

func (p *Proxy) dispatch(ctx context.Context, req Request) (json.RawMessage, error) {
	raw := req.Path.String()
	escaped := req.Path.escaped()
	cacheable := p.classifier.ShouldCache(raw)
	key := cache.Key(escaped)

	switch req.Method {
	case MethodGet:
		return p.get(ctx, req, escaped, key, cacheable)
	case MethodPost, MethodPut, MethodDelete:
		return p.mutate(ctx, req, raw, escaped, key, cacheable)
	default:
		return nil, fmt.Errorf("unsupported method %s", req.Method)
	}
}

func (p *Proxy) get(ctx context.Context, req Request, escaped, key string, cacheable bool) (json.RawMessage, error) {
	if !cacheable {
		if err := p.invalidate(ctx, key, escaped, "uncacheable"); err != nil {
			return nil, err
		}
		return p.transport.Do(ctx, req.Method.String(), escaped, req.Params, nil)
	}

	entry, err := p.store.GetItem(ctx, key)
	if err != nil {
		p.logger.Warn().Err(err).Str("path", escaped).Msg("Cache read failed, treating as miss")
	}
	if entry == nil {
		entry = cache.NewEntry(key)
	}

	if entry.IsHit() {
		p.logger.Debug().Bool("cache_hit", true).Str("key", key).Str("path", escaped).Msg("Serving from cache")
		return entry.Get(), nil
	}

	p.logger.Debug().Bool("cache_hit", false).Str("key", key).Str("path", escaped).Msg("Cache miss")

	value, err := p.transport.Do(ctx, req.Method.String(), escaped, req.Params, nil)
	if err != nil {
		return nil, err
	}

	if isEmpty(value) {
		return value, nil
	}

	entry.Set(value).ExpiresAfter(p.cfg.TTL)
	if err := p.store.Save(ctx, entry); err != nil {
		p.logger.Warn().Err(err).Str("path", escaped).Msg("Failed to store response in cache")
	}
	return value, nil
}

func (p *Proxy) mutate(ctx context.Context, req Request, raw, escaped, key string, cacheable bool) (json.RawMessage, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, raw, err)
	}

	if p.cfg.DryRun {
		DryRuns.WithLabelValues(req.Method.String()).Inc()
		if err := p.echo(req.Method, raw, body); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to write dry-run echo")
		}
		return nil, nil
	}

	// Invalidate before the call so a reader never sees the old value
	// while the mutation is in flight.
	if cacheable {
		if err := p.invalidate(ctx, key, escaped, "mutation"); err != nil {
			return nil, err
		}
	}

	return p.transport.Do(ctx, req.Method.String(), escaped, nil, body)
}

// invalidate deletes the entry for key when one exists. Unreadable entries
// are deleted too.
func (p *Proxy) invalidate(ctx context.Context, key, path, reason string) error {
	entry, err := p.store.GetItem(ctx, key)
	if err == nil && (entry == nil || !entry.IsHit()) {
		return nil
	}

	if err := p.store.DeleteItem(ctx, key); err != nil {
		return fmt.Errorf("invalidate cache for %s: %w", path, err)
	}
	cache.CacheInvalidations.WithLabelValues(reason).Inc()
	p.logger.Debug().Str("key", key).Str("path", path).Str("reason", reason).Msg("Cache entry invalidated")
	return nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return data, nil
}
