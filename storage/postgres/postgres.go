package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"towtruck/config"
	"towtruck/pkg/logger"
	"towtruck/storage"
)

type Store struct {
	pool *pgxpool.Pool
	log  logger.ILogger
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	url := cfg.PostgresURL()

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Error("error while parsing Postgres config", logger.Error(err))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("failed to connect Postgres", logger.Error(err))
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		log.Error("failed to ping Postgres", logger.Error(err))
		pool.Close()
		return nil, err
	}

	if err := runMigrations(url, migrationsPath(cfg), log); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Postgres connected")

	return &Store{
		pool: pool,
		log:  log,
	}, nil
}

func migrationsPath(cfg config.Config) string {
	if cfg.MigrationsPath != "" {
		return cfg.MigrationsPath
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "migrations")
}

func runMigrations(url, path string, log logger.ILogger) error {
	m, err := migrate.New("file://"+path, url)
	if err != nil {
		log.Error("migration init error", logger.Error(err), logger.String("path", path))
		return err
	}
	defer m.Close()

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return nil
		}
		log.Error("migration up error", logger.Error(err))
		return err
	}
	log.Info("migrations applied")
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Admin() storage.IAdminStorage             { return NewAdminRepo(s.pool, s.log) }
func (s *Store) Driver() storage.IDriverStorage           { return NewDriverRepo(s.pool, s.log) }
func (s *Store) ServiceArea() storage.IServiceAreaStorage { return NewServiceAreaRepo(s.pool, s.log) }
func (s *Store) Session() storage.ISessionStorage         { return NewSessionRepo(s.pool, s.log) }
