package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"pawnstorm/internal/config"
	"pawnstorm/internal/console"
	"pawnstorm/internal/game"
	"pawnstorm/internal/handlers"
	"pawnstorm/internal/logging"
	"pawnstorm/internal/storage"
	"pawnstorm/internal/templates"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cmd := &cli.Command{
		Name:           "pawnstorm",
		Usage:          "play chess in the browser against a random-move computer",
		Version:        versionString(),
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the web server",
				Flags:  config.Flags(),
				Action: serve,
			},
			{
				Name:   "play",
				Usage:  "play in the terminal",
				Flags:  config.Flags(),
				Action: play,
			},
			{
				Name:  "version",
				Usage: "print the build revision",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Println("pawnstorm", versionString())
					return nil
				},
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pawnstorm:", err)
		os.Exit(1)
	}
}

func load(c *cli.Command) (config.Config, error) {
	cfg := config.FromCommand(c)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := logging.Init(cfg.LogLevel, cfg.Debug); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func serve(ctx context.Context, c *cli.Command) error {
	cfg, err := load(c)
	if err != nil {
		return err
	}
	defer logging.Sync()

	templates.SetCommit(commit)

	var store *storage.Store
	var rec game.Recorder
	if cfg.DSN != "" {
		db, err := storage.New(cfg.DSN)
		if err != nil {
			return err
		}
		store = storage.NewStore(db)
		defer func() {
			if err := store.Close(); err != nil {
				logging.Warnf("close database: %v", err)
			}
		}()
		rec = store
		logging.Infof("persisting games to postgres")
	}

	hubOpts, err := cfg.HubOptions(rec)
	if err != nil {
		return err
	}
	hub := game.NewHub(hubOpts)
	h := handlers.NewHandler(hub, store)

	mux := http.NewServeMux()
	h.Routes(mux)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.LogRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
		// SSE streams end when the server shuts down.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logging.Infof("pawnstorm %s listening on http://localhost%s", commit, cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Infof("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func play(ctx context.Context, c *cli.Command) error {
	cfg, err := load(c)
	if err != nil {
		return err
	}
	defer logging.Sync()

	opts, err := cfg.ControllerOptions()
	if err != nil {
		return err
	}
	ctrl, err := game.NewController(opts)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, _ := cfg.ThemeMode()
	return console.New(ctrl, mode, os.Stdin, os.Stdout, console.TerminalColumns(os.Stdout)).Run(ctx)
}
