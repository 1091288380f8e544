package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/pflag"

	"github.com/Sternrassler/ovh-cli/pkg/ovh"
)

func (a *app) vrackCommand() *Command {
	return &Command{
		Name:    "vrack",
		Summary: "Inspect vRacks and attach servers to them",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List vRacks by id and name",
				Flags:   func() *pflag.FlagSet { return a.flags("list") },
				Run:     a.action(a.runVrackList),
			},
			{
				Name:    "show",
				Summary: "Show a vRack, its IP blocks and attached servers",
				Usage:   "[flags] VRACK",
				Flags:   func() *pflag.FlagSet { return a.flags("show") },
				Run:     a.action(a.runVrackShow),
			},
			{
				Name:    "assign",
				Summary: "Attach servers to a vRack",
				Usage:   "[flags] VRACK ADDRESS...",
				Examples: []Example{
					{Description: "Attach by vRack name", Command: "ovh-cli vrack assign backend ns123.ip-1-2-3.eu"},
					{Description: "Detach", Command: "ovh-cli vrack assign --remove pn-12345 ns123.ip-1-2-3.eu"},
				},
				Flags: func() *pflag.FlagSet {
					fs := a.flags("assign")
					fs.BoolVar(&a.local.vrackRemove, "remove", false, "detach instead of attach")
					return fs
				},
				Run: a.action(a.runVrackAssign),
			},
		},
	}
}

func (a *app) runVrackList(ctx context.Context, args []string) error {
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	names, err := api.VrackNames(ctx)
	if err != nil {
		return err
	}
	return a.formatter().Print(names)
}

func (a *app) runVrackShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one vRack id or name is required")
	}
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	id, err := api.FindVrack(ctx, args[0])
	if err != nil {
		return err
	}
	vrack, err := api.Vrack(ctx, id)
	if err != nil {
		return err
	}

	blocks, err := api.VrackIPBlocks(ctx, id)
	if err != nil {
		return err
	}
	sort.Strings(blocks)
	described := make(map[string]any, len(blocks))
	for _, block := range blocks {
		info, err := ovh.DescribeBlock(block)
		if err != nil {
			a.logger.Warn().Err(err).Str("block", block).Msg("Cannot describe IP block")
			described[block] = nil
			continue
		}
		described[block] = info
	}

	interfaces, err := api.VrackInterfaceDetails(ctx, id)
	if err != nil {
		return err
	}

	return a.formatter().Section(id, map[string]any{
		"name":        vrack.Name,
		"description": vrack.Description,
		"ip":          described,
		"servers":     interfaces,
	})
}

func (a *app) runVrackAssign(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("a vRack and at least one server address are required")
	}
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}
	id, err := api.FindVrack(ctx, args[0])
	if err != nil {
		return err
	}
	f := a.formatter()

	for _, address := range args[1:] {
		name, err := api.ResolveServer(ctx, address)
		if err != nil {
			return err
		}
		uuid, err := api.VrackInterface(ctx, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		in, err := api.InVrack(ctx, id, uuid)
		if err != nil {
			return err
		}

		var task *ovh.Task
		switch {
		case a.local.vrackRemove && !in:
			f.Warn("%s is not in %s", name, id)
			continue
		case !a.local.vrackRemove && in:
			f.Warn("%s is already in %s", name, id)
			continue
		case a.local.vrackRemove:
			if err := a.confirm(fmt.Sprintf("Detach %s from %s", name, id)); err != nil {
				return err
			}
			task, err = api.RemoveInterface(ctx, id, uuid)
		default:
			current, err := api.ServerVrack(ctx, name)
			if err != nil {
				return err
			}
			if current != "" {
				return fmt.Errorf("%s is attached to %s, detach it first", name, current)
			}
			task, err = api.AssignInterface(ctx, id, uuid)
			if err != nil {
				return err
			}
		}
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
