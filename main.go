// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
tscat serves translations from Qt Linguist catalogs over HTTP.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/pixivfe/tscat/config"
	"codeberg.org/pixivfe/tscat/core/audit"
	"codeberg.org/pixivfe/tscat/core/lrucache"
	"codeberg.org/pixivfe/tscat/core/missing"
	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/middleware/limiter"
	"codeberg.org/pixivfe/tscat/server/router"
	"codeberg.org/pixivfe/tscat/server/routes"
)

const (
	// Values for http.Server timeouts.
	// ref: gosec: G112
	readHeaderTimeout time.Duration = 15 * time.Second
	readTimeout       time.Duration = 15 * time.Second
	writeTimeout      time.Duration = 10 * time.Second
	idleTimeout       time.Duration = 30 * time.Second

	serverShutdownDeadline time.Duration = 5 * time.Second
)

var (
	errChmodSocket = errors.New("failed to change unix socket permissions")
	errChownSocket = errors.New("failed to change unix socket ownership")
)

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run loads the configuration and serves until SIGINT or SIGTERM.
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, &config.Global)
}

// serve wires the server from cfg and runs it, together with the miss
// recorder and the limiter cleanup, until ctx is done or one of them fails.
//
//nolint:funlen
func serve(ctx context.Context, cfg *config.ServerConfig) error {
	var (
		store    *missing.Store
		recorder *missing.Recorder
		reporter i18n.MissReporter
		lister   routes.MissLister
	)

	if cfg.Missing.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Missing.Path), 0o750); err != nil {
			return fmt.Errorf("failed to create miss report directory: %w", err)
		}

		var err error

		store, err = missing.Open(cfg.Missing.Path)
		if err != nil {
			return fmt.Errorf("failed to open miss report: %w", err)
		}
		defer store.Close()

		recorder = missing.NewRecorder(store, cfg.Missing.Buffer)
		reporter = recorder
		lister = store

		log.Info().Str("path", cfg.Missing.Path).Msg("Recording missing translations")
	}

	bundle, err := i18n.Setup(os.DirFS(cfg.Catalog.Dir), ".", i18n.Options{
		Domain:            cfg.Catalog.Domain,
		SourceLanguage:    cfg.Catalog.SourceLanguage,
		StrictMissingKeys: cfg.Catalog.StrictMissingKeys,
		Reporter:          reporter,
	})
	if err != nil {
		// The bundle still serves every locale that loaded.
		log.Warn().Err(err).Str("dir", cfg.Catalog.Dir).Msg("Some catalogs could not be loaded")
	}

	log.Info().Int("locales", len(bundle.Languages())).Msg("Initialized i18n engine")

	handlers := &routes.Handlers{Bundle: bundle, Misses: lister}

	if cfg.Cache.Enabled {
		handlers.Cache, err = lrucache.New[string, []byte](cfg.Cache.Size, cfg.Cache.Compress)
		if err != nil {
			return fmt.Errorf("failed to create response cache: %w", err)
		}
	}

	var lim *limiter.Limiter

	if cfg.Limiter.Enabled {
		lim = limiter.New(limiter.Options{
			Rate:        cfg.Limiter.Rate,
			Burst:       cfg.Limiter.Burst,
			IPv4Prefix:  cfg.Limiter.IPv4Prefix,
			IPv6Prefix:  cfg.Limiter.IPv6Prefix,
			PassIPs:     cfg.Limiter.PassIPs,
			BlockIPs:    cfg.Limiter.BlockIPs,
			FilterLocal: cfg.Limiter.FilterLocal,
		})
		lim.LoadState(cfg.Limiter.StateFilepath)
	}

	router := router.NewRouter()
	router.DefineRoutes(handlers, cfg.Development.InDevelopment)
	router.RegisterMiddleware(bundle, lim)

	// Create http.Server instance
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	listener, err := chooseListener(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info().Msg("Shutting down server...")

		// No more lookups can happen after this; let the recorder drain.
		if recorder != nil {
			defer recorder.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), serverShutdownDeadline)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		return nil
	})

	if recorder != nil {
		g.Go(func() error { return recorder.Run(context.WithoutCancel(gctx)) })
	}

	if lim != nil {
		g.Go(func() error { return lim.Run(gctx) })
	}

	err = g.Wait()

	if lim != nil {
		if saveErr := lim.SaveState(cfg.Limiter.StateFilepath); saveErr != nil {
			log.Error().Err(saveErr).Msg("Failed to save limiter state")
		}
	}

	if recorder != nil {
		log.Info().
			Int64("recorded", recorder.Recorded()).
			Int64("dropped", recorder.Dropped()).
			Msg("Miss report closed")
	}

	if err != nil {
		return err
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

func chooseListener(ctx context.Context, cfg *config.ServerConfig) (net.Listener, error) {
	// Check if we should use a Unix domain socket
	if cfg.Basic.UnixSocket != "" {
		unixAddr := cfg.Basic.UnixSocket

		unixListener, err := (&net.ListenConfig{}).Listen(ctx, "unix", unixAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to start Unix socket listener on %v: %w", unixAddr, err)
		}

		if err = setupSocket(cfg); err != nil {
			_ = unixListener.Close()

			return nil, err
		}

		log.Info().
			Str("address", unixAddr).
			Msg("Listening on Unix domain socket")

		return unixListener, nil
	}

	// Otherwise, fall back to TCP listener
	addr := net.JoinHostPort(cfg.Basic.Host, cfg.Basic.Port)

	tcpListener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	addr = tcpListener.Addr().String()

	// Extract the port for logging
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		_ = tcpListener.Close()

		return nil, fmt.Errorf("failed to parse listener address %q: %w", addr, err)
	}

	log.Info().
		Str("address", addr).
		Str("port", port).
		Str("url", fmt.Sprintf("http://localhost:%v/stats", port)).
		Msg("Listening on address")

	return tcpListener, nil
}

func setupSocket(cfg *config.ServerConfig) error {
	basic := cfg.Basic

	uid, gid := -1, -1

	var err error

	if basic.UnixSocketUser != "" {
		uid, err = parseUserOrGroupID(basic.UnixSocketUser, "user")
		if err != nil {
			return err
		}
	}

	if basic.UnixSocketGroup != "" {
		gid, err = parseUserOrGroupID(basic.UnixSocketGroup, "group")
		if err != nil {
			return err
		}
	}

	if uid != -1 || gid != -1 {
		if err := os.Chown(basic.UnixSocket, uid, gid); err != nil {
			return fmt.Errorf("%w: %w", errChownSocket, err)
		}
	}

	if err := os.Chmod(basic.UnixSocket, basic.UnixSocketPermissions); err != nil {
		return fmt.Errorf("%w: %w", errChmodSocket, err)
	}

	return nil
}

// parseUserOrGroupID attempts to parse a user or group identifier.
//
// It first tries to convert the value to an integer. If that fails, it
// performs a system lookup for the given kind ("user" or "group").
func parseUserOrGroupID(value, kind string) (int, error) {
	if id, err := strconv.Atoi(value); err == nil {
		return id, nil
	}

	var idStr string

	if kind == "user" {
		u, err := user.Lookup(value)
		if err != nil {
			return -1, fmt.Errorf("failed to lookup user '%s': %w", value, err)
		}

		idStr = u.Uid
	} else { // kind == "group"
		g, err := user.LookupGroup(value)
		if err != nil {
			return -1, fmt.Errorf("failed to lookup group '%s': %w", value, err)
		}

		idStr = g.Gid
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return -1, fmt.Errorf("failed to parse %s ID from looked-up value '%s': %w", kind, value, err)
	}

	return id, nil
}
