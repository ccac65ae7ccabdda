package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

type command struct {
	usage string
	run   func(ctx context.Context, args []string, out io.Writer) error
}

var commands = map[string]command{
	"new":     {"new -store DIR -width W -height H [-walls] NAME", cmdNew},
	"info":    {"info -store DIR NAME", cmdInfo},
	"list":    {"list -store DIR", cmdList},
	"resize":  {"resize -store DIR -width W -height H NAME", cmdResize},
	"convert": {"convert IN OUT", cmdConvert},
	"dup":     {"dup -store DIR -id ID NAME", cmdDuplicate},
	"rm":      {"rm -store DIR -id ID NAME", cmdRemoveProp},
	"db":      {"db", cmdDatabase},
}

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatalf("leveltool: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
	return cmd.run(ctx, args[1:], out)
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: leveltool COMMAND [flags]")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// oneName returns the single positional argument left after flag parsing.
func oneName(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", fmt.Errorf("%s: expected one level name: %w", fs.Name(), errUsage)
	}
	return fs.Arg(0), nil
}
