package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	fakecourserepo "github.com/jrsteele09/go-campus/courses/repofake"
	"github.com/jrsteele09/go-campus/internal/config"
	fakenewsletterrepo "github.com/jrsteele09/go-campus/newsletter/repofake"
	"github.com/jrsteele09/go-campus/server"
	fakeuserrepo "github.com/jrsteele09/go-campus/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const pruneInterval = time.Hour

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	if c.GetEnv() != "DEV" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	displayAppname(c.GetAppName())

	handler, err := server.New(c, server.Repos{
		Users:      fakeuserrepo.NewFakeUserRepo(),
		Courses:    fakecourserepo.NewFakeCourseRepo().Seed(),
		Newsletter: fakenewsletterrepo.NewFakeNewsletterRepo(),
	})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pruneRevocations(ctx, handler)

	select {
	case <-waitForStopSignal():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// pruneRevocations drops revoked token ids once the tokens themselves have expired.
func pruneRevocations(ctx context.Context, s *server.Server) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.PruneRevokedTokens(); n > 0 {
				log.Debug().Int("pruned", n).Msg("pruned revoked tokens")
			}
		}
	}
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
