package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/Sternrassler/ovh-cli/pkg/ovh"
)

func (a *app) cacheCommand() *Command {
	return &Command{
		Name:    "cache",
		Summary: "Manage the local response cache",
		Subcommands: []*Command{
			{
				Name:    "clear",
				Summary: "Remove every cached response",
				Flags:   func() *pflag.FlagSet { return a.flags("clear") },
				Run:     a.action(a.runCacheClear),
			},
			{
				Name:    "warm",
				Summary: "Prefetch servers, vRacks, services and applications",
				Flags:   func() *pflag.FlagSet { return a.flags("warm") },
				Run:     a.action(a.runCacheWarm),
			},
		},
	}
}

// runCacheClear talks to the store directly; no credentials are needed.
func (a *app) runCacheClear(ctx context.Context, args []string) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if err := store.Clear(ctx); err != nil {
		return err
	}
	return a.formatter().Line("Cache cleared")
}

func (a *app) runCacheWarm(ctx context.Context, args []string) error {
	if a.opts.noCache {
		return fmt.Errorf("cache warm has no effect with --no-cache")
	}
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}

	w := &warmer{api: api, app: a}
	w.servers(ctx)
	w.vracks(ctx)
	w.services(ctx)
	w.applications(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}
	if w.failed > 0 {
		return fmt.Errorf("cache warm: %d of %d requests failed", w.failed, w.done+w.failed)
	}
	return a.formatter().Line("Cache warmed (%d requests)", w.done)
}

// warmer issues the reads that populate the cache. Individual failures are
// logged and counted so one broken resource does not stop the run.
type warmer struct {
	api    *ovh.API
	app    *app
	done   int
	failed int
}

func (w *warmer) track(what string, err error) bool {
	if err != nil {
		w.failed++
		w.app.logger.Warn().Err(err).Str("resource", what).Msg("Cache warm request failed")
		return false
	}
	w.done++
	return true
}

func (w *warmer) servers(ctx context.Context) {
	names, err := w.api.Servers(ctx)
	if !w.track("servers", err) {
		return
	}
	for _, name := range names {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w.app.stderr, "server %s\n", name)

		_, err := w.api.Server(ctx, name)
		w.track(name, err)

		_, err = w.api.BootOptions(ctx, name)
		w.track(name+" boot", err)

		_, err = w.api.ServerIPs(ctx, name)
		w.track(name+" ips", err)

		uuids, err := w.api.NetworkInterfaces(ctx, name)
		if !w.track(name+" interfaces", err) {
			continue
		}
		for _, uuid := range uuids {
			_, err := w.api.NetworkInterface(ctx, name, uuid)
			w.track(name+" interface "+uuid, err)
		}
	}
}

func (w *warmer) vracks(ctx context.Context) {
	ids, err := w.api.Vracks(ctx)
	if !w.track("vracks", err) {
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w.app.stderr, "vrack %s\n", id)

		_, err := w.api.Vrack(ctx, id)
		w.track(id, err)

		_, err = w.api.VrackIPBlocks(ctx, id)
		w.track(id+" ip blocks", err)
	}
}

func (w *warmer) services(ctx context.Context) {
	ids, err := w.api.Services(ctx)
	if !w.track("services", err) {
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		_, err := w.api.Service(ctx, id)
		w.track(fmt.Sprintf("service %d", id), err)
	}
}

func (w *warmer) applications(ctx context.Context) {
	ids, err := w.api.Applications(ctx)
	if !w.track("applications", err) {
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		_, err := w.api.Application(ctx, id)
		w.track(fmt.Sprintf("application %d", id), err)
	}
}
