package service

import (
	"context"
	"strings"
	"sync"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/storage"
)

type AuthService interface {
	AttemptAdmin(ctx context.Context, email, password string) (*models.Admin, error)
	// AttemptDriver checks the password first and the approval flag second,
	// so ErrPendingApproval is only ever returned for correct credentials.
	AttemptDriver(ctx context.Context, email, password string) (*models.Driver, error)
	// Resolve loads the principal behind a session. It returns ErrNotFound
	// for a vanished account and ErrPendingApproval for an unapproved driver.
	Resolve(ctx context.Context, guard models.Guard, id int64) (models.Identity, error)
}

type authService struct {
	admins  storage.IAdminStorage
	drivers storage.IDriverStorage
	hasher  hasher
	log     logger.ILogger

	dummyOnce sync.Once
	dummy     string
}

func NewAuthService(stg storage.IStorage, h hasher, log logger.ILogger) AuthService {
	return &authService{
		admins:  stg.Admin(),
		drivers: stg.Driver(),
		hasher:  h,
		log:     log,
	}
}

// burn spends the same bcrypt work as a real comparison so unknown emails
// are not distinguishable by response time.
func (s *authService) burn(password string) {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.hasher.Hash("not-a-real-password")
	})
	s.hasher.Check(s.dummy, password)
}

func (s *authService) AttemptAdmin(ctx context.Context, email, password string) (*models.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if admin == nil {
		s.burn(password)
		s.log.Warning("admin login failed", logger.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Check(admin.Password, password) {
		s.log.Warning("admin login failed", logger.String("email", email))
		return nil, ErrInvalidCredentials
	}

	s.log.Info("admin logged in", logger.Int64("admin_id", admin.ID))
	return admin, nil
}

func (s *authService) AttemptDriver(ctx context.Context, email, password string) (*models.Driver, error) {
	driver, err := s.drivers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if driver == nil {
		s.burn(password)
		s.log.Warning("driver login failed", logger.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Check(driver.Password, password) {
		s.log.Warning("driver login failed", logger.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if !driver.IsApproved {
		s.log.Info("driver login blocked pending approval", logger.Int64("driver_id", driver.ID))
		return nil, ErrPendingApproval
	}

	s.log.Info("driver logged in", logger.Int64("driver_id", driver.ID))
	return driver, nil
}

func (s *authService) Resolve(ctx context.Context, guard models.Guard, id int64) (models.Identity, error) {
	switch guard {
	case models.GuardAdmin:
		admin, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if admin == nil {
			return nil, ErrNotFound
		}
		return admin, nil
	case models.GuardDriver:
		driver, err := s.drivers.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if driver == nil {
			return nil, ErrNotFound
		}
		if !driver.IsApproved {
			return nil, ErrPendingApproval
		}
		return driver, nil
	}
	return nil, ErrNotFound
}
