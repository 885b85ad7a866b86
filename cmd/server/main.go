package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/config"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/infra"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/router"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Async pipeline — render and email workers are wired here (composition
	// root) so the pool has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		OnStateChange: func(from, to infra.CBState) {
			log.Warn().
				Stringer("from", from).
				Stringer("to", to).
				Msg("smtp circuit breaker state changed")
		},
	})
	dispatcher := worker.NewDispatcher(rdb)

	docRepo := repository.NewDocumentRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	pdfCfg := infra.PDFConfig{
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		FontPath:       cfg.PDFFontPath,
		StoragePath:    cfg.PDFStoragePath,
	}
	renderWorker := worker.NewDocumentWorker(docRepo, orderRepo, dispatcher, pdfCfg)

	handlers := &worker.Handlers{
		Render: renderWorker,
		Email:  worker.NewEmailWorker(mailer, smtpCB, rdb),
	}
	worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		DocRepo:   docRepo,
		OrderRepo: orderRepo,
		Render:    renderWorker,
		RDB:       rdb,
	})

	r := router.New(cfg, db, rdb, dispatcher, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("order desk listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
