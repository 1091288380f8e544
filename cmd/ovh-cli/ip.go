package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Sternrassler/ovh-cli/pkg/ovh"
)

func (a *app) ipCommand() *Command {
	return &Command{
		Name:    "ip",
		Summary: "Inspect IP blocks, reverses and failover IPs",
		Subcommands: []*Command{
			{
				Name:    "info",
				Summary: "Show where IP blocks are routed",
				Usage:   "[flags] BLOCK...",
				Flags:   func() *pflag.FlagSet { return a.flags("info") },
				Run:     a.action(a.runIPInfo),
			},
			{
				Name:    "reverse",
				Summary: "Show or change reverse DNS",
				Usage:   "[flags] BLOCK [IP]",
				Examples: []Example{
					{Description: "List the reverses of a block", Command: "ovh-cli ip reverse 1.2.3.0/24"},
					{Description: "Set a reverse", Command: "ovh-cli ip reverse 1.2.3.0/24 1.2.3.4 --set host.example.com."},
				},
				Flags: func() *pflag.FlagSet {
					fs := a.flags("reverse")
					fs.StringVar(&a.local.reverseSet, "set", "", "set the reverse of IP")
					fs.BoolVar(&a.local.reverseDelete, "delete", false, "delete the reverse of IP")
					return fs
				},
				Run: a.action(a.runIPReverse),
			},
			{
				Name:    "failover",
				Summary: "List failover IPs or move one to another server",
				Usage:   "[flags] [BLOCK --move ADDRESS]",
				Flags: func() *pflag.FlagSet {
					fs := a.flags("failover")
					fs.StringVar(&a.local.failoverMove, "move", "", "route BLOCK to this server")
					return fs
				},
				Run: a.action(a.runIPFailover),
			},
		},
	}
}

func (a *app) runIPInfo(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one IP block is required")
	}
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	f := a.formatter()

	for _, block := range args {
		info, err := api.IP(ctx, block)
		if err != nil {
			return err
		}
		out := map[string]any{"ip": info}
		if strings.Contains(block, "/") {
			if described, err := ovh.DescribeBlock(block); err == nil {
				out["network"] = described
			}
		}
		if err := f.Section(block, out); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runIPReverse(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: ip reverse BLOCK [IP]")
	}
	block := args[0]
	ip := ""
	switch {
	case len(args) == 2:
		ip = args[1]
	case !strings.Contains(block, "/"):
		ip = block
	}

	change := a.local.reverseSet != "" || a.local.reverseDelete
	if change && ip == "" {
		return fmt.Errorf("an IP is required to change a reverse")
	}
	if a.local.reverseSet != "" && a.local.reverseDelete {
		return fmt.Errorf("--set and --delete are mutually exclusive")
	}

	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	f := a.formatter()

	switch {
	case a.local.reverseSet != "":
		rev, err := api.SetReverse(ctx, block, ip, a.local.reverseSet)
		if err != nil {
			return err
		}
		if rev != nil {
			return f.Print(rev)
		}
		return nil

	case a.local.reverseDelete:
		if err := a.confirm(fmt.Sprintf("Delete the reverse of %s", ip)); err != nil {
			return err
		}
		return api.DeleteReverse(ctx, block, ip)

	case ip != "":
		rev, err := api.Reverse(ctx, block, ip)
		if err != nil {
			return err
		}
		return f.Print(map[string]string{rev.IPReverse: rev.Reverse})
	}

	ips, err := api.Reverses(ctx, block)
	if err != nil {
		return err
	}
	sort.Strings(ips)
	reverses := make(map[string]string, len(ips))
	for _, addr := range ips {
		rev, err := api.Reverse(ctx, block, addr)
		if err != nil {
			return err
		}
		reverses[addr] = rev.Reverse
	}
	return f.Section(block, reverses)
}

func (a *app) runIPFailover(ctx context.Context, args []string) error {
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	f := a.formatter()

	if a.local.failoverMove != "" {
		if len(args) != 1 {
			return fmt.Errorf("exactly one IP block is required with --move")
		}
		block := args[0]
		name, err := api.ResolveServer(ctx, a.local.failoverMove)
		if err != nil {
			return err
		}
		if err := a.confirm(fmt.Sprintf("Move %s to %s", block, name)); err != nil {
			return err
		}
		task, err := api.MoveIP(ctx, block, name)
		if err != nil {
			return err
		}
		if task != nil {
			return f.Section(block, task)
		}
		return nil
	}

	blocks := args
	if len(blocks) == 0 {
		if blocks, err = api.FailoverIPs(ctx); err != nil {
			return err
		}
	}
	sort.Strings(blocks)

	routed := make(map[string]string, len(blocks))
	for _, block := range blocks {
		info, err := api.IP(ctx, block)
		if err != nil {
			return err
		}
		routed[block] = info.RoutedTo.ServiceName
	}
	return f.Print(routed)
}
