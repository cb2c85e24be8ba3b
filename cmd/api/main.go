package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/app"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/clock"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/config"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/events"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/storage/postgres"
	transporthttp "github.com/RendaZhang/shopback-cashback-ledger/internal/transport/http"
	"github.com/RendaZhang/shopback-cashback-ledger/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()
	cfg := config.Load(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	idemRepo := postgres.NewIdempotencyRepository(pool)

	confirmOpts := []app.ConfirmServiceOption{}
	if cfg.KafkaBroker != "" {
		publisher := events.NewPublisher([]string{cfg.KafkaBroker}, cfg.KafkaTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Printf("close event publisher: %v", err)
			}
		}()
		confirmOpts = append(confirmOpts, app.WithEventPublisher(publisher))
		logger.Printf("order-confirmed events enabled broker=%s topic=%s", cfg.KafkaBroker, cfg.KafkaTopic)
	}

	confirmSvc := app.NewConfirmService(postgres.NewConfirmRepository(pool), idemRepo, clk, confirmOpts...)
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(pool), idemRepo, clk)
	merchantSvc := app.NewMerchantService(postgres.NewRuleRepository(pool), clk)
	balanceSvc := app.NewBalanceService(postgres.NewLedgerRepository(pool))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/orders", transporthttp.HandleCreateOrder(orderSvc))
	mux.Handle("/orders/", transporthttp.HandleConfirmOrder(confirmSvc))
	mux.Handle("/merchants/", transporthttp.HandleUpsertRule(merchantSvc))
	mux.Handle("/users/", transporthttp.HandleGetBalance(balanceSvc, clk))
	mux.Handle("/", transporthttp.NotFoundHandler())

	// RequestID runs outermost so the logger and handlers see the same id.
	handler := transporthttp.RequestID(transporthttp.RequestLogger(
		transporthttp.CORS(cfg.CORSOrigins, mux),
		logger,
	))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("%s listening on :%s", cfg.ServiceName, cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}
