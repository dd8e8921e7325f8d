package service

import (
	"context"
	"strings"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/pkg/pagination"
	"towtruck/storage"
)

const ServiceAreasPerPage = 12

type ServiceAreaList struct {
	Areas   []*models.ServiceArea
	Total   int
	Request pagination.Request
}

type ServiceAreaService interface {
	List(ctx context.Context, search string, page int) (*ServiceAreaList, error)
	// Active returns active areas by sort_order, then name.
	Active(ctx context.Context) ([]*models.ServiceArea, error)
	Get(ctx context.Context, id int64) (*models.ServiceArea, error)
	Create(ctx context.Context, req models.ServiceAreaRequest) (*models.ServiceArea, error)
	Update(ctx context.Context, id int64, req models.ServiceAreaRequest) (*models.ServiceArea, error)
	Delete(ctx context.Context, id int64) error
}

type serviceAreaService struct {
	areas storage.IServiceAreaStorage
	log   logger.ILogger
}

func NewServiceAreaService(stg storage.IStorage, log logger.ILogger) ServiceAreaService {
	return &serviceAreaService{areas: stg.ServiceArea(), log: log}
}

func (s *serviceAreaService) List(ctx context.Context, search string, page int) (*ServiceAreaList, error) {
	req := pagination.NewRequest(page, ServiceAreasPerPage)

	areas, total, err := s.areas.List(ctx, strings.TrimSpace(search), req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("failed to list service areas", logger.Error(err))
		return nil, err
	}
	return &ServiceAreaList{Areas: areas, Total: total, Request: req}, nil
}

func (s *serviceAreaService) Active(ctx context.Context) ([]*models.ServiceArea, error) {
	return s.areas.GetActive(ctx)
}

func (s *serviceAreaService) Get(ctx context.Context, id int64) (*models.ServiceArea, error) {
	area, err := s.areas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, ErrNotFound
	}
	return area, nil
}

func (s *serviceAreaService) Create(ctx context.Context, req models.ServiceAreaRequest) (*models.ServiceArea, error) {
	verr := &ValidationError{}
	name := verr.required("name", req.Name)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	area := &models.ServiceArea{
		Name:     name,
		IsActive: true,
	}
	if req.IsActive != nil {
		area.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		area.SortOrder = *req.SortOrder
	}

	if err := s.areas.Create(ctx, area); err != nil {
		s.log.Error("failed to create service area", logger.Error(err))
		return nil, err
	}
	s.log.Info("service area created", logger.Int64("area_id", area.ID), logger.String("name", area.Name))
	return area, nil
}

func (s *serviceAreaService) Update(ctx context.Context, id int64, req models.ServiceAreaRequest) (*models.ServiceArea, error) {
	area, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	name := verr.required("name", req.Name)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	area.Name = name
	area.IsActive = true
	if req.IsActive != nil {
		area.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		area.SortOrder = *req.SortOrder
	}

	if err := s.areas.Update(ctx, area); err != nil {
		s.log.Error("failed to update service area", logger.Error(err), logger.Int64("area_id", id))
		return nil, err
	}
	return area, nil
}

func (s *serviceAreaService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.areas.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete service area", logger.Error(err), logger.Int64("area_id", id))
		return err
	}
	s.log.Info("service area deleted", logger.Int64("area_id", id))
	return nil
}
