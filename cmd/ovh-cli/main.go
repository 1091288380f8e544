package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	err := a.root().Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// root builds the command tree.
func (a *app) root() *Command {
	return &Command{
		Name:    "ovh-cli",
		Summary: "Command line client for the OVH API with response caching and dry-run mode",
		Help:    a.stdout,
		Subcommands: []*Command{
			a.apiCommand(),
			a.cacheCommand(),
			a.serverCommand(),
			a.vrackCommand(),
			a.ipCommand(),
			a.ticketCommand(),
			a.serviceCommand(),
			{
				Name:    "version",
				Summary: "Print the version",
				Run: func(ctx context.Context, args []string) error {
					_, err := fmt.Fprintf(a.stdout, "ovh-cli %s\n", version)
					return err
				},
			},
		},
	}
}
