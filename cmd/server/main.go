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
	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/internal/config"
	"github.com/jrsteele09/fedteam/internal/limiter"
	"github.com/jrsteele09/fedteam/internal/obs"
	"github.com/jrsteele09/fedteam/plugin"
	"github.com/jrsteele09/fedteam/server"
	"github.com/jrsteele09/fedteam/sessions"
	"github.com/jrsteele09/fedteam/sessions/redisrepo"
	fakesessionrepo "github.com/jrsteele09/fedteam/sessions/repofakes"
	"github.com/rs/zerolog/log"
)

const sweepInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
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
	obs.Init()
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionRepo, loginLimiter, closeStore, err := newStores(c)
	if err != nil {
		return err
	}
	defer closeStore()

	if sweeper, ok := sessionRepo.(sessions.Sweeper); ok {
		go sweepSessions(ctx, sweeper, c.GetMaxSessionAge())
	}

	api := apiclient.New(c.GetAPIBaseURL(), c.GetAPITimeout(), apiclient.WithRetry(c.GetRetryAttempts(), c.GetRetryDelay()))
	pluginClient := plugin.New(c.GetPluginBaseURL(), c.GetPluginTimeout(), apiclient.WithRetry(c.GetPluginRetryAttempts(), c.GetPluginRetryDelay()))

	s, err := server.New(c, sessionRepo, api, pluginClient, loginLimiter)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer, c) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newStores picks Redis for session records and login throttling when REDIS_URL
// is set, memory otherwise.
func newStores(c config.Config) (sessions.Repo, limiter.Limiter, func(), error) {
	if c.GetRedisURL() == "" {
		log.Info().Msg("REDIS_URL not set, using in-memory session store")
		return fakesessionrepo.NewFakeSessionRepo(),
			limiter.NewMemory(c.GetLoginRateLimit(), c.GetLoginRateWindow()),
			func() {},
			nil
	}

	client, err := redisrepo.NewClient(c.GetRedisURL())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("redis client: %w", err)
	}
	repo := redisrepo.New(client, c.GetMaxSessionAge())
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		// Pages show the loading placeholder until Redis answers
		log.Warn().Err(err).Msg("Redis not reachable at startup")
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Err(err).Msg("Failed to close redis client")
		}
	}
	return repo, limiter.NewRedis(client, "fedteam:login:", c.GetLoginRateLimit(), c.GetLoginRateWindow()), closeFn, nil
}

func sweepSessions(ctx context.Context, sweeper sessions.Sweeper, maxAge time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := sweeper.DeleteExpired(ctx, now.Add(-maxAge))
			if err != nil {
				log.Err(err).Msg("Session sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int("removed", n).Msg("Swept idle sessions")
			}
		}
	}
}

func listenAndServe(httpServer *http.Server, c config.Config) error {
	log.Info().
		Str("addr", httpServer.Addr).
		Str("env", c.GetEnv()).
		Str("api", c.GetAPIBaseURL()).
		Str("plugin", c.GetPluginBaseURL()).
		Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
