// Package main is the entry point for the brackets highlighter.
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

	"golang.org/x/term"

	"github.com/dshills/brackets/internal/app"
	"github.com/dshills/brackets/internal/logging"
	"github.com/dshills/brackets/internal/tui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errExit stops the program after help or version output.
var errExit = errors.New("exit")

type cliOptions struct {
	app.Options
	dump bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errExit) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// Without a terminal there is nothing to draw on.
	if !opts.dump && !term.IsTerminal(int(os.Stdout.Fd())) {
		opts.dump = true
	}
	if opts.dump {
		opts.Watch = false
	}

	application, err := app.New(opts.Options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	// Ensure cleanup on all exit paths
	defer application.Close()

	if opts.dump {
		if err := application.Dump(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	screen, err := tui.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx, screen); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	var showVersion bool
	var showHelp bool

	fs := flag.NewFlagSet("brackets", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	fs.BoolVar(&opts.dump, "dump", false, "Print the bracket pairs as JSON and exit")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload the file when it changes on disk")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "brackets - matching bracket highlighter\n\n")
		fmt.Fprintf(stderr, "Usage: brackets [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  brackets                    Edit an empty buffer\n")
		fmt.Fprintf(stderr, "  brackets file.txt           Edit a file\n")
		fmt.Fprintf(stderr, "  brackets -dump file.txt     Print matched pairs as JSON\n")
		fmt.Fprintf(stderr, "  brackets -watch file.txt    Follow changes made by other programs\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, errExit
		}
		return opts, err
	}

	if showHelp {
		fs.Usage()
		return opts, errExit
	}

	if showVersion {
		fmt.Fprintf(stdout, "brackets %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errExit
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.File = fs.Arg(0)
	default:
		return opts, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}

	return opts, nil
}
