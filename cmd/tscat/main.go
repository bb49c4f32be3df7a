// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Command tscat works with Qt Linguist TS catalogs from the command line.

Usage:

	tscat <command> [flags] [arguments]

Run tscat help for the list of commands. The exit status is 1 when a
command fails (or check finds issues) and 2 on usage errors.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tscat/config"
	"codeberg.org/pixivfe/tscat/core/audit"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

var (
	errUsage  = errors.New("usage error")
	errIssues = errors.New("issues found")
)

// env is what a command reads and writes besides its arguments.
type env struct {
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error
}

var commands []*command

func init() {
	commands = []*command{
		{"lookup", "[-n N] FILE CONTEXT SOURCE [ARG...]", "translate a single string", runLookup},
		{"stats", "[-json | -html] FILE...", "show completion per catalog", runStats},
		{"check", "[-only KIND,...] FILE...", "validate translations", runCheck},
		{"compile", "[-o OUT] FILE", "write the compact binary form of a catalog", runCompile},
		{"export-po", "[-unfinished] [-o OUT] FILE", "export a catalog as a gettext PO file", runExportPO},
		{"missing", "[-db PATH] [-locale L] [-limit N]", "list lookups that fell back to the source text", runMissing},
		{"remote", "[-server URL] [-lang L] [-n N] CONTEXT SOURCE [ARG...]", "translate through a running server", runRemote},
	}
}

func main() {
	audit.SetDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &env{stdout: os.Stdout, stderr: os.Stderr})

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, e *env) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(e.stderr)

		if len(args) == 0 {
			return exitUsage
		}

		return exitOK
	}

	if args[0] == "version" {
		fmt.Fprintln(e.stdout, "tscat", config.BuildVersion)

		return exitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(e.stderr, "tscat: unknown command %q\n\n", args[0])
		usage(e.stderr)

		return exitUsage
	}

	fs := flag.NewFlagSet("tscat "+cmd.name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "usage: tscat %s %s\n", cmd.name, cmd.args)
		fs.PrintDefaults()
	}

	err := cmd.run(ctx, e, fs, args[1:])

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		fs.Usage()

		return exitUsage
	case errors.Is(err, errIssues):
		return exitFail
	default:
		log.Error().Err(err).Str("cmd", cmd.name).Msg("Command failed")

		return exitFail
	}
}

func findCommand(name string) *command {
	for _, c := range commands {
		if c.name == name {
			return c
		}
	}

	return nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: tscat <command> [flags] [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}

	fmt.Fprintf(w, "  %-10s %s\n", "version", "print the version")
}

// parse parses the flags of a command and checks the number of positional
// arguments. max < 0 means no upper bound.
func parse(fs *flag.FlagSet, args []string, minArgs, maxArgs int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}

		return fmt.Errorf("%w: %w", errUsage, err)
	}

	n := fs.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		return errUsage
	}

	return nil
}
