package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jrsteele09/go-campus/internal/config"
	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/jrsteele09/go-campus/validation"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	global := flag.NewFlagSet("campus", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	apiURL := global.String("api", "", "backend base URL")
	store := global.String("store", "", "local storage backend")
	storePath := global.String("store-path", "", "local storage location")
	verbose := global.Bool("v", false, "log requests")
	if err := global.Parse(args); err != nil || global.NArg() == 0 {
		printUsage(errOut)
		return 2
	}

	cmd, ok := commands[global.Arg(0)]
	if !ok {
		fmt.Fprintf(errOut, "unknown command %q\n", global.Arg(0))
		printUsage(errOut)
		return 2
	}

	overrides := map[string]any{}
	for key, val := range map[string]string{"campus.api_url": *apiURL, "campus.store": *store, "campus.store_path": *storePath} {
		if val != "" {
			overrides[key] = val
		}
	}
	cfg := config.New(config.WithValues(overrides))

	logger := newLogger(errOut, cfg.GetLogLevel(), *verbose)
	a, err := newApp(ctx, cfg, logger, out, errOut)
	if err != nil {
		fmt.Fprintln(errOut, errorStyle.Render(err.Error()))
		return 1
	}
	defer a.Close()

	return report(errOut, cmd.run(ctx, a, global.Args()[1:]), cmd.usage)
}

func newLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(lvl).With().Timestamp().Logger()
}

// report turns a command error into a message and an exit code.
func report(w io.Writer, err error, usage string) int {
	if err == nil {
		return 0
	}
	var (
		apiErr *pipeline.APIError
		valErr *validation.Error
	)
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(w, "usage: campus %s\n", usage)
		return 2
	case errors.Is(err, errLoginRequired):
		return 1
	case errors.As(err, &valErr):
		fmt.Fprintln(w, errorStyle.Render(valErr.Message))
	case errors.As(err, &apiErr):
		fmt.Fprintln(w, errorStyle.Render(apiErr.Message))
	default:
		fmt.Fprintln(w, errorStyle.Render(err.Error()))
	}
	return 1
}
