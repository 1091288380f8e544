package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/pflag"
)

func (a *app) serviceCommand() *Command {
	return &Command{
		Name:    "service",
		Summary: "Inspect billed services",
		Subcommands: []*Command{
			{
				Name:    "info",
				Summary: "Show services (all of them without arguments)",
				Usage:   "[flags] [ID...]",
				Flags:   func() *pflag.FlagSet { return a.flags("info") },
				Run:     a.action(a.runServiceInfo),
			},
		},
	}
}

func (a *app) runServiceInfo(ctx context.Context, args []string) error {
	api, err := a.openAPI(ctx, false)
	if err != nil {
		return err
	}

	var ids []int
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid service id %q", arg)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		if ids, err = api.Services(ctx); err != nil {
			return err
		}
		sort.Ints(ids)
	}

	f := a.formatter()
	for _, id := range ids {
		service, err := api.Service(ctx, id)
		if err != nil {
			return err
		}
		if err := f.Section(strconv.Itoa(id), service); err != nil {
			return err
		}
	}
	return nil
}
