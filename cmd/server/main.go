package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/classifieds/internal/app"
	"github.com/charlesng35/classifieds/pkg/logger"
)

const configEnv = "CLASSIFIEDS_CONFIG"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	default:
		fmt.Fprintf(os.Stderr, "classifieds: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("classifieds-server", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", os.Getenv(configEnv), "configuration file or directory (env "+configEnv+")")
	checkOnly := fs.Bool("check-config", false, "load and validate the configuration, then exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(*configPath)
	if err != nil {
		return err
	}
	applied, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return err
	}

	if *checkOnly {
		return reportConfig(stdout, cfg, applied)
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel, cfg.Server.Development); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.WithModule("bootstrap")
	for _, key := range sortedKeys(applied) {
		log.Warn("setting missing; runtime default applied", zap.String("key", key))
	}

	stack, err := bootstrapRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stack.Shutdown(context.Background(), log)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)),
		Handler:           stack.Router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	return serve(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

// serve runs srv until ctx is cancelled or the listener fails, then drains
// in-flight requests for at most grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, log *zap.Logger) error {
	failed := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		failed <- srv.ListenAndServe()
	}()

	select {
	case err := <-failed:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		log.Info("shutdown requested", zap.Duration("grace", grace))
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-failed; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func reportConfig(w io.Writer, cfg *app.Config, applied map[string]bool) error {
	fmt.Fprintf(w, "configuration ok: driver=%s port=%d redis=%t\n",
		cfg.Database.Driver, cfg.Server.Port, cfg.Cache.Redis.Enabled)
	for _, key := range sortedKeys(applied) {
		fmt.Fprintf(w, "  default applied: %s\n", key)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func loadApplicationConfig(path string) (*app.Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return app.LoadConfig()
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config path %q does not exist", path)
	case err != nil:
		return nil, fmt.Errorf("stat config path: %w", err)
	case info.IsDir():
		return app.LoadConfig(path)
	default:
		return app.LoadConfig(filepath.Dir(path))
	}
}
