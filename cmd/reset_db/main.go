package main

import (
	"context"
	"os"

	"towtruck/config"
	"towtruck/pkg/logger"
	"towtruck/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pg.Close()

	// Admins and service areas are reference data and survive a reset.
	// Drivers go with their sessions through the foreign key cascade.
	_, err = pg.GetPool().Exec(context.Background(), "TRUNCATE TABLE drivers, sessions RESTART IDENTITY CASCADE")
	if err != nil {
		log.Error("failed to truncate tables", logger.Error(err))
		os.Exit(1)
	}
	log.Info("drivers and sessions truncated")
}
