package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/volt-campus/VoltRentalAPI/internal/app"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateOnly {
		if err := app.Migrate(ctx, *configPath); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		log.Info("migrations applied")
		return
	}

	if err := app.RunServer(ctx, *configPath); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
