package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
)

type command struct {
	name        string
	description string
	usage       string
	run         func(ctx context.Context, env *environment, args []string) error
}

func (c *command) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\nUSAGE:\n    %s\n\nFLAGS:\n", c.description, c.usage)
		fs.PrintDefaults()
	}
	return fs
}

type registry struct {
	commands map[string]*command
}

func newRegistry(cmds ...*command) *registry {
	r := &registry{commands: make(map[string]*command, len(cmds))}
	for _, c := range cmds {
		r.commands[c.name] = c
	}
	return r
}

func (r *registry) lookup(name string) (*command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

func (r *registry) printUsage() {
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "neko-backup manages neko-finance backups\n\nUSAGE:\n    neko-backup <command> [flags]\n\nCOMMANDS:")
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "    %-14s %s\n", n, r.commands[n].description)
	}
}
