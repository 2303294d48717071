package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kaizen-backend-go/internal/cache"
	"kaizen-backend-go/internal/config"
	"kaizen-backend-go/internal/db"
	httpapi "kaizen-backend-go/internal/http"
	"kaizen-backend-go/internal/migrations"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	configureLogger(cfg.Debug)
	logFile, err := newDailyLogWriter(cfg.LogDir, cfg.LogRetentionDays)
	if err != nil {
		logrus.WithError(err).Warn("log file disabled")
	} else {
		logrus.SetOutput(io.MultiWriter(os.Stdout, logFile))
		defer logFile.Close()
	}

	database, err := db.Open(cfg.DSN(), db.PoolOptions{
		Size:     cfg.DBPoolSize,
		Overflow: cfg.DBMaxOverflow,
		Timeout:  cfg.PoolTimeout(),
	})
	if err != nil {
		logrus.WithError(err).Fatal("db")
	}
	defer database.Close()
	if err := migrations.Apply(database.DB); err != nil {
		logrus.WithError(err).Fatal("migrations")
	}

	var sitemap *cache.SitemapCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, sitemap cache disabled")
		} else {
			defer client.Close()
			sitemap = cache.NewSitemapCache(client, cfg.SitemapCacheTTL())
		}
	}

	server, err := httpapi.NewServer(db.NewStore(database, cfg.PoolTimeout()), cfg, sitemap)
	if err != nil {
		logrus.WithError(err).Fatal("server")
	}
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.Addr()).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logrus.WithError(err).Warn("shutdown")
	}
	logrus.Info("shutdown complete")
}

func configureLogger(debug bool) {
	if debug {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	logrus.SetLevel(logrus.InfoLevel)
}
