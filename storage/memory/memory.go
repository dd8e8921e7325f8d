// Package memory keeps every table in process memory. It mirrors the
// filtering and ordering of the Postgres repositories and backs local runs
// with STORAGE_DRIVER=memory as well as the test suites.
package memory

import (
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"towtruck/pkg/models"
	"towtruck/storage"
)

type Store struct {
	mu sync.RWMutex

	admins   map[int64]*models.Admin
	drivers  map[int64]*models.Driver
	areas    map[int64]*models.ServiceArea
	sessions map[string]*models.Session

	nextAdmin  int64
	nextDriver int64
	nextArea   int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		admins:   make(map[int64]*models.Admin),
		drivers:  make(map[int64]*models.Driver),
		areas:    make(map[int64]*models.ServiceArea),
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}
}

func (s *Store) Admin() storage.IAdminStorage             { return &adminRepo{s} }
func (s *Store) Driver() storage.IDriverStorage           { return &driverRepo{s} }
func (s *Store) ServiceArea() storage.IServiceAreaStorage { return &serviceAreaRepo{s} }
func (s *Store) Session() storage.ISessionStorage         { return &sessionRepo{s} }

func (s *Store) Close() {}

func (s *Store) GetPool() *pgxpool.Pool { return nil }
