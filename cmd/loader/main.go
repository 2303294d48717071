// Command loader installs fixture content and an optional admin account.
// It is idempotent: records are matched by slug (locations by city and
// state), so repeated runs converge on the same state.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"kaizen-backend-go/internal/config"
	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/migrations"
	"kaizen-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	fixturePath := flag.String("fixture", "fixtures/default.yaml", "YAML fixture to load; empty to skip")
	adminUser := flag.String("admin-username", "", "create or refresh this admin user")
	adminEmail := flag.String("admin-email", "", "email for the admin user")
	adminPassword := flag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "password for the admin user (defaults to $ADMIN_PASSWORD)")
	superuser := flag.Bool("superuser", false, "also mark the admin user as superuser")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var fixture services.Fixture
	if *fixturePath != "" {
		file, err := os.Open(*fixturePath)
		if err != nil {
			logrus.WithError(err).Fatal("open fixture")
		}
		fixture, err = services.DecodeFixture(file)
		_ = file.Close()
		if err != nil {
			logrus.WithError(err).Fatal("fixture")
		}
	}
	if *adminUser != "" && (*adminEmail == "" || *adminPassword == "") {
		logrus.Fatal("-admin-username needs -admin-email and -admin-password")
	}

	database, err := db.Open(cfg.DSN(), db.PoolOptions{Size: 1, Overflow: 1, Timeout: cfg.PoolTimeout()})
	if err != nil {
		logrus.WithError(err).Fatal("db")
	}
	defer database.Close()
	if err := migrations.Apply(database.DB); err != nil {
		logrus.WithError(err).Fatal("migrations")
	}
	tokens, err := services.NewTokenService(cfg.SecretKey, cfg.Algorithm, cfg.AccessTTL())
	if err != nil {
		logrus.WithError(err).Fatal("tokens")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store := db.NewStore(database, cfg.PoolTimeout())
	var report services.LoadReport
	var adminCreated bool
	err = store.Tx(ctx, func(tx *sqlx.Tx) error {
		var err error
		report, err = services.LoadFixture(ctx, tx, fixture)
		if err != nil {
			return err
		}
		if *adminUser != "" {
			adminCreated, err = services.EnsureAdmin(ctx, tx, tokens, *adminUser, *adminEmail, *adminPassword, *superuser)
		}
		return err
	})
	if err != nil {
		logrus.WithError(err).Fatal("load failed, nothing was written")
	}

	logrus.WithFields(logrus.Fields{
		"article_categories": report.ArticleCategories,
		"company_categories": report.CompanyCategories,
		"companies":          report.Companies,
		"features":           report.Features,
		"articles":           report.Articles,
		"locations":          report.Locations,
	}).Info("fixture loaded")
	if *adminUser != "" {
		logrus.WithFields(logrus.Fields{"username": *adminUser, "created": adminCreated}).Info("admin user ready")
	}
}
