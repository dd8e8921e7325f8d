package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"towtruck/pkg/models"
)

type IStorage interface {
	Admin() IAdminStorage
	Driver() IDriverStorage
	ServiceArea() IServiceAreaStorage
	Session() ISessionStorage
	Close()
	// GetPool is nil for storages that are not backed by Postgres.
	GetPool() *pgxpool.Pool
}

type IAdminStorage interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type IDriverStorage interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
	GetByEmail(ctx context.Context, email string) (*models.Driver, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	// Update overwrites every mutable column except is_online.
	Update(ctx context.Context, driver *models.Driver) error
	UpdateProfile(ctx context.Context, id int64, name, phone string, serviceAreaID int64, avatar *string) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	// Approve only touches pending rows; it reports whether a row changed.
	Approve(ctx context.Context, id, adminID int64, at time.Time) (bool, error)
	ToggleOnline(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q models.DriverQuery) ([]*models.Driver, int, error)
	Count(ctx context.Context, f models.DriverCountFilter) (int, error)
}

type IServiceAreaStorage interface {
	Create(ctx context.Context, area *models.ServiceArea) error
	GetByID(ctx context.Context, id int64) (*models.ServiceArea, error)
	Update(ctx context.Context, area *models.ServiceArea) error
	// Delete nulls the service_area_id of drivers in the area.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search string, limit, offset int) ([]*models.ServiceArea, int, error)
	GetActive(ctx context.Context) ([]*models.ServiceArea, error)
	CountActive(ctx context.Context) (int, error)
}

type ISessionStorage interface {
	// Get returns nil for unknown or expired sessions.
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
