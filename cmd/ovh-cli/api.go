package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Sternrassler/ovh-cli/pkg/client"
	"github.com/Sternrassler/ovh-cli/pkg/config"
)

// tokenRights are the access rules requested for a new consumer key.
var tokenRights = []string{"GET=/*", "POST=/*", "PUT=/*", "DELETE=/*"}

func (a *app) apiCommand() *Command {
	return &Command{
		Name:    "api",
		Summary: "Manage API credentials and applications",
		Subcommands: []*Command{
			{
				Name:    "test",
				Summary: "Check the credentials by reading the account",
				Flags:   func() *pflag.FlagSet { return a.flags("test") },
				Run:     a.action(a.runAPITest),
			},
			{
				Name:    "setup",
				Summary: "Write the config file interactively",
				Flags:   func() *pflag.FlagSet { return a.flags("setup") },
				Run:     a.action(a.runAPISetup),
			},
			{
				Name:    "apps",
				Summary: "List API applications of the account",
				Usage:   "[flags] [--delete ID]",
				Flags: func() *pflag.FlagSet {
					fs := a.flags("apps")
					fs.IntVar(&a.local.appDelete, "delete", 0, "delete the application with this id")
					return fs
				},
				Run: a.action(a.runAPIApps),
			},
		},
	}
}

func (a *app) runAPITest(ctx context.Context, args []string) error {
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	me, err := api.Me(ctx)
	if err != nil {
		return err
	}
	return a.formatter().Print(map[string]any{
		"nichandle": me.Nichandle,
		"name":      strings.TrimSpace(me.FirstName + " " + me.Name),
		"email":     me.Email,
	})
}

func (a *app) runAPISetup(ctx context.Context, args []string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if cfg.ApplicationKey, err = a.prompt("Application key", cfg.ApplicationKey); err != nil {
		return err
	}
	if cfg.ApplicationSecret, err = a.promptSecret("Application secret", cfg.ApplicationSecret); err != nil {
		return err
	}
	if cfg.Endpoint, err = a.prompt("Endpoint", cfg.Endpoint); err != nil {
		return err
	}

	tokenURL, err := createTokenURL(cfg.Endpoint, "ovh-cli", "ovh-cli")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "\nCreate a consumer key at:\n  %s\n\n", tokenURL)

	if cfg.ConsumerKey, err = a.promptSecret("Consumer key", cfg.ConsumerKey); err != nil {
		return err
	}
	ttl, err := a.prompt("Cache TTL (seconds)", strconv.FormatInt(int64(cfg.CacheTTL), 10))
	if err != nil {
		return err
	}
	if err := cfg.CacheTTL.UnmarshalText([]byte(ttl)); err != nil {
		return fmt.Errorf("cache ttl: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	a.logger.Info().Str("path", path).Msg("Configuration saved")
	return a.formatter().Line("Configuration written to %s", path)
}

func (a *app) runAPIApps(ctx context.Context, args []string) error {
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}

	if a.local.appDelete != 0 {
		if err := a.confirm(fmt.Sprintf("Delete API application %d", a.local.appDelete)); err != nil {
			return err
		}
		return api.DeleteApplication(ctx, a.local.appDelete)
	}

	ids, err := api.Applications(ctx)
	if err != nil {
		return err
	}
	f := a.formatter()
	for _, id := range ids {
		app, err := api.Application(ctx, id)
		if err != nil {
			return err
		}
		if err := f.Section(strconv.Itoa(id), app); err != nil {
			return err
		}
	}
	return nil
}

// createTokenURL returns the page where a consumer key with full access
// can be created for the endpoint.
func createTokenURL(endpoint, name, description string) (string, error) {
	base, err := client.ResolveEndpoint(endpoint)
	if err != nil {
		return "", err
	}
	query := url.Values{}
	query.Set("applicationName", name)
	query.Set("applicationDescription", description)
	query.Set("duration", "2592000")

	rights := strings.Join(tokenRights, "&")
	return strings.TrimSuffix(base, "/1.0") + "/createToken/index.cgi?" + query.Encode() + "&" + rights, nil
}
