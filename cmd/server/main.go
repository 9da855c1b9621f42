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

	"github.com/Dias221467/Habit_Tracker/internal/config"
	"github.com/Dias221467/Habit_Tracker/internal/database"
	"github.com/Dias221467/Habit_Tracker/internal/handlers"
	"github.com/Dias221467/Habit_Tracker/internal/metrics"
	"github.com/Dias221467/Habit_Tracker/internal/repository"
	"github.com/Dias221467/Habit_Tracker/internal/router"
	"github.com/Dias221467/Habit_Tracker/internal/scheduler"
	"github.com/Dias221467/Habit_Tracker/internal/services"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration from the environment (.env optional)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	client, db, err := database.ConnectDB(context.Background(), cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Database connection error")
	}

	m := metrics.New()

	habitRepo := repository.NewHabitRepository(db, cfg.Collection)
	habitService := services.NewHabitService(habitRepo)
	habitHandler := handlers.NewHabitHandler(habitService, m)

	var heartbeat *cron.Cron
	if cfg.HeartbeatSchedule != "" {
		heartbeat, err = scheduler.StartHeartbeatCron(cfg.HeartbeatSchedule, func(ctx context.Context) error {
			return database.Ping(ctx, client)
		}, m)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to start heartbeat")
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.WithCORS(router.NewRouter(habitHandler, m), cfg.Origins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	<-stop
	logger.Log.Info("Shutting down")

	if heartbeat != nil {
		<-heartbeat.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.Log.WithError(err).Error("MongoDB disconnect failed")
	}
}
