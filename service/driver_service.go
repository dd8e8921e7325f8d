package service

import (
	"context"
	"strings"
	"time"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/pkg/pagination"
	"towtruck/storage"
)

const RecentDriversLimit = 10

type DriverFilter struct {
	Search string
	Status models.DriverStatus
	Page   int
}

type DriverList struct {
	Drivers []*models.Driver
	Total   int
	Request pagination.Request
}

type Dashboard struct {
	Stats         models.DashboardStats
	RecentDrivers []*models.Driver
}

// DriverService is the admin side of driver management.
type DriverService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	List(ctx context.Context, f DriverFilter) (*DriverList, error)
	Get(ctx context.Context, id int64) (*models.Driver, error)
	Create(ctx context.Context, adminID int64, req models.AdminDriverRequest) (*models.Driver, error)
	Update(ctx context.Context, adminID, id int64, req models.AdminDriverRequest) (*models.Driver, error)
	Approve(ctx context.Context, adminID, id int64) (*models.Driver, error)
	Delete(ctx context.Context, id int64) error
}

type driverService struct {
	drivers storage.IDriverStorage
	areas   storage.IServiceAreaStorage
	files   FileStore
	hasher  hasher
	log     logger.ILogger
	now     func() time.Time
}

func NewDriverService(stg storage.IStorage, files FileStore, h hasher, log logger.ILogger) DriverService {
	return &driverService{
		drivers: stg.Driver(),
		areas:   stg.ServiceArea(),
		files:   files,
		hasher:  h,
		log:     log,
		now:     time.Now,
	}
}

func (s *driverService) Dashboard(ctx context.Context) (*Dashboard, error) {
	yes, no := true, false

	var (
		stats models.DashboardStats
		err   error
	)
	if stats.TotalDrivers, err = s.drivers.Count(ctx, models.DriverCountFilter{}); err != nil {
		return nil, err
	}
	if stats.ApprovedDrivers, err = s.drivers.Count(ctx, models.DriverCountFilter{Approved: &yes}); err != nil {
		return nil, err
	}
	if stats.PendingDrivers, err = s.drivers.Count(ctx, models.DriverCountFilter{Approved: &no}); err != nil {
		return nil, err
	}
	if stats.OnlineDrivers, err = s.drivers.Count(ctx, models.DriverCountFilter{Approved: &yes, Online: &yes}); err != nil {
		return nil, err
	}

	recent, _, err := s.drivers.Search(ctx, models.DriverQuery{
		Order: models.DriverOrderLatest,
		Limit: RecentDriversLimit,
	})
	if err != nil {
		return nil, err
	}

	return &Dashboard{Stats: stats, RecentDrivers: recent}, nil
}

func (s *driverService) List(ctx context.Context, f DriverFilter) (*DriverList, error) {
	req := pagination.NewRequest(f.Page, pagination.DefaultPerPage)

	q := models.DriverQuery{
		Search:      strings.TrimSpace(f.Search),
		SearchEmail: true,
		Order:       models.DriverOrderLatest,
		Limit:       req.Limit(),
		Offset:      req.Offset(),
	}
	switch f.Status {
	case models.DriverStatusApproved, models.DriverStatusPending, models.DriverStatusOnline:
		q.Status = f.Status
	}

	drivers, total, err := s.drivers.Search(ctx, q)
	if err != nil {
		s.log.Error("failed to list drivers", logger.Error(err))
		return nil, err
	}
	return &DriverList{Drivers: drivers, Total: total, Request: req}, nil
}

func (s *driverService) Get(ctx context.Context, id int64) (*models.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}
	return driver, nil
}

// checkArea treats a nil or zero id as "no area".
func (s *driverService) checkArea(ctx context.Context, id *int64, verr *ValidationError) (*int64, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	area, err := s.areas.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if area == nil {
		verr.add("service_area_id", MsgAreaInvalid)
	}
	v := *id
	return &v, nil
}

func (s *driverService) Create(ctx context.Context, adminID int64, req models.AdminDriverRequest) (*models.Driver, error) {
	email := strings.TrimSpace(req.Email)
	verr := &ValidationError{}
	name := verr.required("name", req.Name)
	phone := verr.required("phone_number", req.PhoneNumber)

	taken, err := s.drivers.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		verr.add("email", MsgEmailTaken)
	}
	if req.Password == "" {
		verr.add("password", MsgPasswordRequired)
	} else if len(req.Password) < 8 {
		verr.add("password", MsgPasswordMin)
	}
	areaID, err := s.checkArea(ctx, req.ServiceAreaID, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	driver := &models.Driver{
		Name:          name,
		Email:         email,
		Password:      hash,
		PhoneNumber:   phone,
		ServiceAreaID: areaID,
		IsApproved:    req.IsApproved,
	}
	if req.IsApproved {
		at := s.now()
		driver.ApprovedBy, driver.ApprovedAt = &adminID, &at
	}

	if err := s.drivers.Create(ctx, driver); err != nil {
		s.log.Error("failed to create driver", logger.Error(err))
		return nil, err
	}
	s.log.Info("driver created by admin", logger.Int64("driver_id", driver.ID), logger.Int64("admin_id", adminID))
	return driver, nil
}

func (s *driverService) Update(ctx context.Context, adminID, id int64, req models.AdminDriverRequest) (*models.Driver, error) {
	driver, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	verr := &ValidationError{}
	name := verr.required("name", req.Name)
	phone := verr.required("phone_number", req.PhoneNumber)

	taken, err := s.drivers.EmailTaken(ctx, email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		verr.add("email", MsgEmailTaken)
	}
	if req.Password != "" && len(req.Password) < 8 {
		verr.add("password", MsgPasswordMin)
	}
	areaID, err := s.checkArea(ctx, req.ServiceAreaID, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	driver.Name = name
	driver.Email = email
	driver.PhoneNumber = phone
	driver.ServiceAreaID = areaID
	if req.Password != "" {
		if driver.Password, err = s.hasher.Hash(req.Password); err != nil {
			return nil, err
		}
	}
	// approval only moves forward
	if req.IsApproved && !driver.IsApproved {
		at := s.now()
		driver.IsApproved, driver.ApprovedBy, driver.ApprovedAt = true, &adminID, &at
	}

	if err := s.drivers.Update(ctx, driver); err != nil {
		s.log.Error("failed to update driver", logger.Error(err), logger.Int64("driver_id", id))
		return nil, err
	}
	s.log.Info("driver updated by admin", logger.Int64("driver_id", id), logger.Int64("admin_id", adminID))
	return s.Get(ctx, id)
}

func (s *driverService) Approve(ctx context.Context, adminID, id int64) (*models.Driver, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	changed, err := s.drivers.Approve(ctx, id, adminID, s.now())
	if err != nil {
		s.log.Error("failed to approve driver", logger.Error(err), logger.Int64("driver_id", id))
		return nil, err
	}
	if changed {
		s.log.Info("driver approved", logger.Int64("driver_id", id), logger.Int64("admin_id", adminID))
	}
	return s.Get(ctx, id)
}

func (s *driverService) Delete(ctx context.Context, id int64) error {
	driver, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.drivers.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete driver", logger.Error(err), logger.Int64("driver_id", id))
		return err
	}
	if driver.Avatar != nil && *driver.Avatar != "" {
		if err := s.files.Delete(*driver.Avatar); err != nil {
			s.log.Warning("failed to delete avatar", logger.Error(err), logger.String("path", *driver.Avatar))
		}
	}
	s.log.Info("driver deleted", logger.Int64("driver_id", id))
	return nil
}
