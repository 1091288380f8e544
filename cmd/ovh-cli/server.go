package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/Sternrassler/ovh-cli/pkg/ovh"
)

func (a *app) serverCommand() *Command {
	return &Command{
		Name:    "server",
		Summary: "Inspect and operate dedicated servers",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List dedicated servers",
				Flags:   func() *pflag.FlagSet { return a.flags("list") },
				Run:     a.action(a.runServerList),
			},
			{
				Name:    "info",
				Summary: "Show server details, boot mode and billing",
				Usage:   "[flags] ADDRESS...",
				Flags:   func() *pflag.FlagSet { return a.flags("info") },
				Run:     a.action(a.runServerInfo),
			},
			{
				Name:    "boot",
				Summary: "Show or change the boot mode",
				Usage:   "[flags] ADDRESS...",
				Examples: []Example{
					{Description: "Boot into rescue at the next reboot", Command: "ovh-cli server boot --rescue ns123.ip-1-2-3.eu"},
					{Description: "Preview the change", Command: "ovh-cli server boot --hd --dry-run ns123.ip-1-2-3.eu"},
				},
				Flags: func() *pflag.FlagSet {
					fs := a.flags("boot")
					fs.BoolVar(&a.local.bootHD, "hd", false, "boot from the hard disk")
					fs.BoolVar(&a.local.bootRescue, "rescue", false, "boot into rescue mode")
					fs.IntVar(&a.local.bootID, "boot-id", 0, "boot with this boot id")
					fs.BoolVarP(&a.local.bootList, "list", "l", false, "list the available boot options")
					fs.BoolVarP(&a.local.bootAll, "all", "a", false, "show the boot mode of every server")
					return fs
				},
				Run: a.action(a.runServerBoot),
			},
			{
				Name:    "reboot",
				Summary: "Hard reboot a server",
				Usage:   "[flags] ADDRESS...",
				Flags:   func() *pflag.FlagSet { return a.flags("reboot") },
				Run:     a.action(a.runServerReboot),
			},
			{
				Name:    "renew",
				Summary: "Show or change the renewal of servers",
				Usage:   "[flags] [ADDRESS...]",
				Examples: []Example{
					{Description: "Expiration and renewal of every server", Command: "ovh-cli server renew --all"},
					{Description: "Renew a server automatically", Command: "ovh-cli server renew --on ns123.ip-1-2-3.eu"},
				},
				Flags: func() *pflag.FlagSet {
					fs := a.flags("renew")
					fs.BoolVarP(&a.local.renewAll, "all", "a", false, "list the renewal of every server")
					fs.BoolVar(&a.local.renewOn, "on", false, "enable automatic renewal")
					fs.BoolVar(&a.local.renewOff, "off", false, "disable automatic renewal")
					return fs
				},
				Run: a.action(a.runServerRenew),
			},
			a.consoleCommand(),
			{
				Name:    "ipmi-reset",
				Summary: "Reset the IPMI interface",
				Usage:   "[flags] ADDRESS...",
				Flags:   func() *pflag.FlagSet { return a.flags("ipmi-reset") },
				Run:     a.action(a.runServerIPMIReset),
			},
		},
	}
}

func (a *app) runServerList(ctx context.Context, args []string) error {
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	names, err := api.Servers(ctx)
	if err != nil {
		return err
	}
	sort.Strings(names)

	if a.opts.grep {
		f := a.formatter()
		for _, name := range names {
			server, err := api.Server(ctx, name)
			if err != nil {
				return err
			}
			if err := f.Section(name, server); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tIP\tREVERSE\tDATACENTER\tSTATE")
	for _, name := range names {
		server, err := api.Server(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, server.IP, orDash(server.Reverse), server.Datacenter, server.State)
	}
	return tw.Flush()
}

func (a *app) runServerInfo(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one server address is required")
	}
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	f := a.formatter()

	for _, address := range args {
		name, err := api.ResolveServer(ctx, address)
		if err != nil {
			return err
		}
		server, err := api.Server(ctx, name)
		if err != nil {
			return err
		}
		boot, err := api.BootMode(ctx, name)
		if err != nil {
			return err
		}
		infos, err := api.ServerServiceInfos(ctx, name)
		if err != nil {
			return err
		}
		vrack, err := api.ServerVrack(ctx, name)
		if err != nil && !errors.Is(err, ovh.ErrNoVrackInterface) {
			return err
		}

		if err := f.Section(name, map[string]any{
			"server":  server,
			"boot":    boot,
			"service": infos,
			"vrack":   vrack,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runServerBoot(ctx context.Context, args []string) error {
	bootID, change, err := a.requestedBootID()
	if err != nil {
		return err
	}

	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}

	if a.local.bootAll {
		if change {
			return fmt.Errorf("--all only shows boot modes")
		}
		if args, err = api.Servers(ctx); err != nil {
			return err
		}
		sort.Strings(args)
	}
	if len(args) == 0 {
		return fmt.Errorf("at least one server address is required")
	}

	f := a.formatter()
	for _, address := range args {
		name, err := api.ResolveServer(ctx, address)
		if err != nil {
			return err
		}

		switch {
		case a.local.bootList:
			options, err := api.BootOptions(ctx, name)
			if err != nil {
				return err
			}
			byID := make(map[string]ovh.BootOption, len(options))
			for id, opt := range options {
				byID[fmt.Sprint(id)] = opt
			}
			if err := f.Section(name, byID); err != nil {
				return err
			}

		case change:
			if err := api.SetBoot(ctx, name, bootID); err != nil {
				return err
			}
			if !a.opts.dryRun {
				if err := f.Line("%s: boot id set to %d", name, bootID); err != nil {
					return err
				}
			}

		default:
			mode, err := api.BootMode(ctx, name)
			if err != nil {
				return err
			}
			if err := f.Section(name, mode); err != nil {
				return err
			}
		}
	}
	return nil
}

// requestedBootID returns the boot id selected by --hd, --rescue or
// --boot-id, and whether one was selected at all.
func (a *app) requestedBootID() (int, bool, error) {
	var ids []int
	if a.local.bootHD {
		ids = append(ids, ovh.BootHardDisk)
	}
	if a.local.bootRescue {
		ids = append(ids, ovh.BootRescue)
	}
	if a.local.bootID != 0 {
		ids = append(ids, a.local.bootID)
	}

	switch len(ids) {
	case 0:
		return 0, false, nil
	case 1:
		if a.local.bootList {
			return 0, false, fmt.Errorf("--list cannot be combined with a boot change")
		}
		return ids[0], true, nil
	default:
		return 0, false, fmt.Errorf("--hd, --rescue and --boot-id are mutually exclusive")
	}
}

func (a *app) runServerReboot(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one server address is required")
	}
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	f := a.formatter()

	for _, address := range args {
		name, err := api.ResolveServer(ctx, address)
		if err != nil {
			return err
		}
		if err := a.confirm(fmt.Sprintf("Hard reboot %s", name)); err != nil {
			return err
		}
		task, err := api.Reboot(ctx, name)
		if err != nil {
			return err
		}
		if task != nil {
			if err := f.Section(name, task); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *app) runServerRenew(ctx context.Context, args []string) error {
	if a.local.renewOn && a.local.renewOff {
		return fmt.Errorf("--on and --off are mutually exclusive")
	}
	change := a.local.renewOn || a.local.renewOff

	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}

	if a.local.renewAll {
		if change {
			return fmt.Errorf("--all only shows renewals")
		}
		return a.renewTable(ctx, api)
	}
	if len(args) == 0 {
		return fmt.Errorf("at least one server address is required")
	}

	f := a.formatter()
	for _, address := range args {
		name, err := api.ResolveServer(ctx, address)
		if err != nil {
			return err
		}
		infos, err := api.ServerServiceInfos(ctx, name)
		if err != nil {
			return err
		}

		if !change {
			server, err := api.Server(ctx, name)
			if err != nil {
				return err
			}
			if err := f.Section(name, map[string]any{
				"reverse": server.Reverse,
				"service": infos,
			}); err != nil {
				return err
			}
			continue
		}

		renew := ovh.Renewal{Period: 1}
		if infos.Renew != nil {
			renew = *infos.Renew
		}
		renew.Automatic = a.local.renewOn
		if err := api.UpdateServerServiceInfos(ctx, name, renew); err != nil {
			return err
		}
		if !a.opts.dryRun {
			if err := f.Line("%s: automatic renewal %s", name, renewState(renew.Automatic)); err != nil {
				return err
			}
		}
	}
	return nil
}

// renewTable lists expiration and renewal mode of every server.
func (a *app) renewTable(ctx context.Context, api *ovh.API) error {
	names, err := api.Servers(ctx)
	if err != nil {
		return err
	}
	sort.Strings(names)

	f := a.formatter()
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	if !a.opts.grep {
		fmt.Fprintln(tw, "NAME\tREVERSE\tEXPIRATION\tRENEW")
	}
	for _, name := range names {
		server, err := api.Server(ctx, name)
		if err != nil {
			return err
		}
		infos, err := api.ServerServiceInfos(ctx, name)
		if err != nil {
			return err
		}
		automatic := infos.Renew != nil && infos.Renew.Automatic

		if a.opts.grep {
			if err := f.Section(name, map[string]any{
				"reverse":    server.Reverse,
				"expiration": infos.Expiration,
				"automatic":  automatic,
			}); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, orDash(server.Reverse), orDash(infos.Expiration), renewState(automatic))
	}
	return tw.Flush()
}

func renewState(automatic bool) string {
	if automatic {
		return "ENABLED"
	}
	return "DISABLED"
}

func (a *app) runServerIPMIReset(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one server address is required")
	}
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	f := a.formatter()

	for _, address := range args {
		name, err := api.ResolveServer(ctx, address)
		if err != nil {
			return err
		}
		if err := a.confirm(fmt.Sprintf("Reset the IPMI interface of %s", name)); err != nil {
			return err
		}
		task, err := api.ResetIPMI(ctx, name)
		if err != nil {
			return err
		}
		if task != nil {
			if err := f.Section(name, task); err != nil {
				return err
			}
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
