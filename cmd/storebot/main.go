// Package main contains the entrypoint for the storebot webhook platform.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/edgard/storebot/internal/admin"
	"github.com/edgard/storebot/internal/bot"
	"github.com/edgard/storebot/internal/bot/handlers"
	"github.com/edgard/storebot/internal/bot/tasks"
	"github.com/edgard/storebot/internal/config"
	"github.com/edgard/storebot/internal/database"
	"github.com/edgard/storebot/internal/dispatch"
	"github.com/edgard/storebot/internal/logger"
	"github.com/edgard/storebot/internal/server"
	"github.com/edgard/storebot/internal/session"
	"github.com/edgard/storebot/internal/telegram"
	"github.com/edgard/storebot/internal/vault"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, serves until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load env file", "path", *envPath, "error", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	v := vault.New(cfg.Vault.Secret)
	httpClient := telegram.NewHTTPClient(cfg.Telegram.RequestTimeout)
	sessions := session.NewCache()

	sessionDeps := session.Deps{
		Logger: log,
		Handlers: handlers.HandlerDeps{
			Logger:        log,
			Messages:      cfg.Messages,
			PublicBaseURL: cfg.Telegram.PublicBaseURL,
		},
		ServerURL:  cfg.Telegram.ServerURL,
		HTTPClient: httpClient,
	}
	dispatcher := dispatch.New(store, v, sessions, func(shopID, token string) (session.Handler, error) {
		return session.New(shopID, token, sessionDeps)
	}, log)

	adminSvc := admin.NewService(store, v, telegram.NewClient(cfg.Telegram.ServerURL, httpClient, log), sessions, admin.Options{
		PublicBaseURL: cfg.Telegram.PublicBaseURL,
		VerifyTimeout: cfg.Telegram.VerifyTimeout,
	}, log)

	srv := server.NewServer(cfg.HTTP, server.Deps{
		Logger:     log,
		Dispatcher: dispatcher,
		Admin:      adminSvc,
		Owners:     store,
		Health:     store,
		JWTSecret:  cfg.Auth.JWTSecret,
	})

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{Logger: log, Store: store, Sessions: sessions})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewApp(log, srv, sched)
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Storebot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Storebot stopped gracefully.")
	return 0
}
