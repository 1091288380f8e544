package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

const (
	defaultConsoleAttempts = 10
	defaultConsoleDelay    = 5 * time.Second
	defaultConsoleTTL      = 15
	defaultConsoleType     = "kvmipHtml5URL"
)

func (a *app) consoleCommand() *Command {
	return &Command{
		Name:    "console",
		Summary: "Open an IPMI session and print its access data",
		Usage:   "[flags] ADDRESS",
		Examples: []Example{
			{Description: "KVM in the browser for 30 minutes", Command: "ovh-cli server console --ttl 30 ns123.ip-1-2-3.eu"},
			{Description: "Serial over LAN", Command: "ovh-cli server console --type serialOverLanURL ns123.ip-1-2-3.eu"},
		},
		Flags: func() *pflag.FlagSet {
			fs := a.flags("console")
			fs.IntVarP(&a.local.consoleAttempts, "attempts", "a", defaultConsoleAttempts, "polls before giving up")
			fs.DurationVarP(&a.local.consoleDelay, "delay", "d", defaultConsoleDelay, "wait between polls")
			fs.IntVarP(&a.local.consoleTTL, "ttl", "x", defaultConsoleTTL, "session lifetime in minutes")
			fs.StringVar(&a.local.consoleType, "type", defaultConsoleType, "access type (kvmipHtml5URL, kvmipJnlp, serialOverLanURL, serialOverLanSshKey)")
			fs.StringVar(&a.local.consoleAllowIP, "allow-ip", "", "restrict the session to this address")
			return fs
		},
		Run: a.action(a.runServerConsole),
	}
}

// runServerConsole requests an IPMI session, then polls until OVH has
// prepared it. --dry-run is ignored: requesting a session leaves the server
// untouched.
func (a *app) runServerConsole(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one server address is required")
	}
	if a.local.consoleAttempts < 1 {
		return fmt.Errorf("--attempts must be at least 1")
	}
	if a.opts.dryRun {
		a.logger.Warn().Msg("--dry-run ignored by server console")
		a.opts.dryRun = false
	}

	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	name, err := api.ResolveServer(ctx, args[0])
	if err != nil {
		return err
	}

	f := a.formatter()
	f.Line("Requesting IPMI access for %s (TTL %d min)", name, a.local.consoleTTL)
	if _, err := api.RequestIPMIAccess(ctx, name, a.local.consoleType, a.local.consoleAllowIP, a.local.consoleTTL); err != nil {
		return err
	}

	var lastErr error
	for i := 1; i <= a.local.consoleAttempts; i++ {
		if i > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.local.consoleDelay):
			}
		}

		access, err := api.IPMIAccess(ctx, name, a.local.consoleType)
		if err != nil {
			lastErr = err
			a.logger.Debug().Err(err).Int("attempt", i).Str("server", name).Msg("IPMI session not ready")
			continue
		}
		return f.Section(name, access)
	}
	return fmt.Errorf("no IPMI session for %s after %d attempts: %w", name, a.local.consoleAttempts, lastErr)
}
