package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
	"github.com/KilimcininKorOglu/obaschema/internal/logging"
	"github.com/KilimcininKorOglu/obaschema/internal/rest"
)

// app wires the loaded schema to the REST server.
type app struct {
	cfg      *config.Config
	manager  *config.Manager
	logger   logging.Logger
	holder   *ingest.Holder
	reloader *ingest.Reloader
	server   *rest.Server
}

func serveCmd(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "Path to configuration file")
	envFile := fs.String("env-file", "", "Load environment variables from this file")
	address := fs.String("address", "", "Listen address")
	logLevel := fs.String("log-level", "", "Log level")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printServeUsage(stdout)
		return 0
	}

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *address != "" {
		cfg.REST.Address = *address
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if !validate(cfg) {
		return 1
	}

	a, err := newApp(context.Background(), cfg, *configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	if err := a.start(context.Background()); err != nil {
		fmt.Fprintf(stderr, "Server error: %v\n", err)
		return 1
	}

	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			a.handleSIGHUP()
		case syscall.SIGINT, syscall.SIGTERM:
			a.logger.Info("received signal, shutting down", "signal", sig.String())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := a.stop(shutdownCtx); err != nil {
				fmt.Fprintf(stderr, "Shutdown error: %v\n", err)
				return 1
			}
			return 0
		}
	}
	return 0
}

// newApp loads the schema and builds the server. A schema with rejected
// definitions is still served; the report lists what was rejected.
func newApp(ctx context.Context, cfg *config.Config, configFile string) (*app, error) {
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	s, err := ingest.Load(ctx, &cfg.Schema, logger)
	if err != nil {
		return nil, err
	}
	for _, d := range s.Report.Diagnostics {
		logger.Warn("definition rejected", "pass_id", s.Report.PassID, "diagnostic", d.String())
	}
	logger.Info("schema loaded",
		"pass_id", s.Report.PassID,
		"attribute_types", s.Registry.NumAttributeTypes(),
		"object_classes", s.Registry.NumObjectClasses(),
	)

	a := &app{
		cfg:     cfg,
		manager: config.NewManager(cfg, configFile),
		logger:  logger,
		holder:  ingest.NewHolder(s),
	}

	handlers := rest.NewHandlers(a.holder, version)
	handlers.SetConfigManager(a.manager)
	if len(cfg.Schema.Files) > 0 {
		a.reloader, err = ingest.NewReloader(cfg.Schema, a.holder, logger)
		if err != nil {
			return nil, err
		}
		handlers.SetReloader(a.reloader)
	}

	restCfg := rest.DefaultServerConfig()
	restCfg.Address = cfg.REST.Address
	restCfg.Mode = cfg.REST.Mode
	a.server = rest.NewServer(restCfg, handlers, logger)
	return a, nil
}

func (a *app) start(ctx context.Context) error {
	if err := a.server.Start(); err != nil {
		return err
	}
	if a.reloader != nil && a.cfg.Schema.Reload.Enabled {
		a.reloader.Start(ctx)
		a.logger.Info("watching schema files", "files", a.cfg.Schema.Files)
	}
	return nil
}

func (a *app) stop(ctx context.Context) error {
	if a.reloader != nil {
		a.reloader.Stop()
	}
	return a.server.Stop(ctx)
}

// handleSIGHUP re-reads the config file and reloads the schema files.
// Changes to the list of schema files take effect on restart.
func (a *app) handleSIGHUP() {
	a.logger.Info("received SIGHUP, reloading")
	if a.manager.ConfigFile() != "" {
		if err := a.manager.Reload(); err != nil {
			a.logger.Error("config reload failed", "err", err)
		}
	}
	if a.reloader == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := a.reloader.Reload(ctx); err != nil {
		a.logger.Error("schema reload failed", "err", err)
	}
}
