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
	"github.com/jrsteele09/fedteam/internal/config"
	"github.com/jrsteele09/fedteam/internal/obs"
	"github.com/jrsteele09/fedteam/mockapi"
	"github.com/jrsteele09/fedteam/token"
	faketreinorepo "github.com/jrsteele09/fedteam/trainings/repofake"
	fakeuserrepo "github.com/jrsteele09/fedteam/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running mock API")
	}
	log.Info().Msg("Mock API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	obs.SetupLogger(c.GetEnv(), c.GetLogLevel())
	displayAppname("Fed Team API")

	var signer token.Signer
	if secret := c.GetMockAPISecret(); secret != "" {
		signer = token.NewHMACSigner(secret)
	} else {
		random, err := token.NewRandomHMACSigner()
		if err != nil {
			return err
		}
		log.Warn().Msg("MOCKAPI_JWT_SECRET not set, tokens will not survive a restart")
		signer = random
	}

	userRepo := fakeuserrepo.NewFakeUserRepo()
	treinoRepo := faketreinorepo.NewFakeTreinoRepo()
	if c.GetMockAPISeed() {
		if err := mockapi.Seed(userRepo, treinoRepo, time.Now()); err != nil {
			return err
		}
		log.Info().Str("password", mockapi.SeedPassword).Msg("Seeded one account per access code")
	}

	api := mockapi.New(userRepo, treinoRepo, token.NewIssuer(signer, token.WithExpiry(c.GetMockAPITokenExpiry())))
	server := &http.Server{Addr: c.GetMockAPIPort(), Handler: api, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(server) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Mock API listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
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
