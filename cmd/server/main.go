package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/vectrabank/ledger-engine/internal/api"
	"github.com/vectrabank/ledger-engine/internal/config"
	"github.com/vectrabank/ledger-engine/internal/engine"
	"github.com/vectrabank/ledger-engine/internal/events/kafka"
	"github.com/vectrabank/ledger-engine/internal/interfaces"
	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/storage/memory"
	"github.com/vectrabank/ledger-engine/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var store interfaces.LedgerStore
	var closeStore func() error
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		store = pg
		closeStore = pg.Close
		slog.Info("using postgres store")
	} else {
		store = memory.NewStore()
		slog.Info("using in-memory store")
	}

	var publisher interfaces.EventPublisher
	var closePublisher func() error
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, engine.EventTopic)
		publisher = kp
		closePublisher = kp.Close
		slog.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers)
	}

	ledgerService := ledger.New(store)
	engineService := engine.New(ledgerService, store, publisher, logger)

	accountHandler := &api.AccountHandler{Ledger: ledgerService}
	transactionHandler := &api.TransactionHandler{Engine: engineService}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/accounts", accountHandler.CreateAccount)
	v1.Get("/accounts", accountHandler.ListAccounts)
	v1.Get("/accounts/:id", accountHandler.GetAccount)
	v1.Get("/accounts/:id/balance", accountHandler.GetBalance)
	v1.Patch("/accounts/:id/active", accountHandler.SetActive)

	v1.Post("/transactions/saque", transactionHandler.Saque)
	v1.Post("/transactions/deposito", transactionHandler.Deposito)
	v1.Post("/transactions/pix", transactionHandler.Pix)
	v1.Post("/transactions/transferencia", transactionHandler.Transferencia)
	v1.Get("/transactions", transactionHandler.List)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	<-stop
	slog.Info("shutting down")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if closePublisher != nil {
		if err := closePublisher(); err != nil {
			slog.Error("kafka close failed", "error", err)
		}
	}
	if closeStore != nil {
		if err := closeStore(); err != nil {
			slog.Error("store close failed", "error", err)
		}
	}
	slog.Info("server exited")
}
