package main

import (
	"context"
	"os"

	"golang.org/x/crypto/bcrypt"

	"towtruck/config"
	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/storage"
	"towtruck/storage/postgres"
)

var defaultAreas = []string{
	"Port of Spain",
	"San Fernando",
	"Chaguanas",
	"Arima",
	"Point Fortin",
	"Diego Martin",
	"Sangre Grande",
	"Tunapuna",
	"Couva",
	"Marabella",
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pg.Close()

	if err := Seed(context.Background(), pg, cfg, log); err != nil {
		log.Error("seeding failed", logger.Error(err))
		os.Exit(1)
	}
}

// Seed creates the default admin and service areas. Running it again is
// harmless: an existing admin email is left alone and areas are only added
// when none exist.
func Seed(ctx context.Context, stg storage.IStorage, cfg config.Config, log logger.ILogger) error {
	existing, err := stg.Admin().GetByEmail(ctx, cfg.SeedAdminEmail)
	if err != nil {
		return err
	}
	if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &models.Admin{Name: cfg.SeedAdminName, Email: cfg.SeedAdminEmail, Password: string(hash)}
		if err := stg.Admin().Create(ctx, admin); err != nil {
			return err
		}
		log.Info("admin seeded", logger.String("email", admin.Email))
	}

	_, total, err := stg.ServiceArea().List(ctx, "", 1, 0)
	if err != nil {
		return err
	}
	if total > 0 {
		log.Info("service areas already present", logger.Int("count", total))
		return nil
	}
	for i, name := range defaultAreas {
		area := &models.ServiceArea{Name: name, IsActive: true, SortOrder: i}
		if err := stg.ServiceArea().Create(ctx, area); err != nil {
			return err
		}
	}
	log.Info("service areas seeded", logger.Int("count", len(defaultAreas)))
	return nil
}
