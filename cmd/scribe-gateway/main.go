package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jessevdk/go-flags"
	"github.com/manthysbr/scribe/internal/adapters/duckdb"
	"github.com/manthysbr/scribe/internal/adapters/objectstore"
	"github.com/manthysbr/scribe/internal/adapters/stepfunctions"
	"github.com/manthysbr/scribe/internal/config"
	"github.com/manthysbr/scribe/internal/core/services"
	"github.com/manthysbr/scribe/pkg/kernel"
	"github.com/rs/cors"
)

func main() {
	opts, err := config.Load(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) {
			fmt.Fprintln(os.Stderr, err)
		} else if flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: opts.SlogLevel()}))
	logger.Info("starting scribe gateway")

	if err := run(logger, opts); err != nil {
		logger.Error("gateway startup failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, opts *config.Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	// Adapters
	engine := stepfunctions.NewClient(logger, opts.WorkflowEndpoint, opts.WorkflowTimeout)
	store := objectstore.New(logger, opts.StorageURL)

	// Core services
	registry := services.NewJobRegistry()
	dispatcher := services.NewDispatcher(logger, registry, engine, services.DispatchConfig{
		StateMachineArn: opts.StateMachineArn,
		ExecutionPrefix: opts.ExecutionPrefix,
		MaxInFlight:     opts.MaxInFlight,
		RatePerSecond:   opts.DispatchRate,
		Timeout:         opts.WorkflowTimeout,
	})
	ingress := services.NewCallbackIngress(logger, registry, opts.ExecutionPrefix)
	status := services.NewStatusQuery(registry)
	uploader := services.NewUploader(logger, store)
	reaper := services.NewJobReaper(logger, registry, opts.JobTTL, opts.ReapInterval)

	apiServer, err := kernel.NewServer(logger, registry, dispatcher, ingress, status, uploader)
	if err != nil {
		return fmt.Errorf("failed to init api server: %w", err)
	}
	apiServer.SetMaxUploadBytes(opts.MaxUploadBytes)

	if opts.JournalPath != "" {
		journal, err := duckdb.NewJournal(opts.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()

		dispatcher.SetJournal(journal)
		ingress.SetJournal(journal)
		apiServer.SetJournal(journal)
		logger.Info("traffic journal enabled", "path", opts.JournalPath)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           c.Handler(apiServer.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Job retention
	g.Go(func() error {
		return reaper.Run(gCtx)
	})

	// 2. API server
	g.Go(func() error {
		logger.Info("starting api server", "addr", opts.Addr, "storage", opts.StorageURL, "workflow_endpoint", opts.WorkflowEndpoint)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	// 3. Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
