package service

import (
	"context"
	"sort"
	"strings"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/pkg/pagination"
	"towtruck/storage"
)

const (
	DirectoryPerPage = 9
	// AreaAll disables the area filter.
	AreaAll = "all"
)

type DirectoryFilter struct {
	Search string
	Area   string
	Page   int
}

type DirectoryResult struct {
	Drivers      []*models.Driver
	Total        int
	Request      pagination.Request
	ServiceAreas []string
	Stats        models.DirectoryStats
}

type DirectoryService interface {
	List(ctx context.Context, f DirectoryFilter) (*DirectoryResult, error)
}

type directoryService struct {
	drivers storage.IDriverStorage
	areas   storage.IServiceAreaStorage
	log     logger.ILogger
}

func NewDirectoryService(stg storage.IStorage, log logger.ILogger) DirectoryService {
	return &directoryService{
		drivers: stg.Driver(),
		areas:   stg.ServiceArea(),
		log:     log,
	}
}

func (s *directoryService) List(ctx context.Context, f DirectoryFilter) (*DirectoryResult, error) {
	req := pagination.NewRequest(f.Page, DirectoryPerPage)

	q := models.DriverQuery{
		ApprovedOnly: true,
		Search:       strings.TrimSpace(f.Search),
		Order:        models.DriverOrderOnlineFirst,
		Limit:        req.Limit(),
		Offset:       req.Offset(),
	}
	if area := strings.TrimSpace(f.Area); area != "" && area != AreaAll {
		q.AreaName = area
	}

	drivers, total, err := s.drivers.Search(ctx, q)
	if err != nil {
		s.log.Error("failed to list directory", logger.Error(err))
		return nil, err
	}

	active, err := s.areas.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(active))
	for _, a := range active {
		names = append(names, a.Name)
	}
	sort.Strings(names)

	stats, err := s.stats(ctx)
	if err != nil {
		return nil, err
	}

	return &DirectoryResult{
		Drivers:      drivers,
		Total:        total,
		Request:      req,
		ServiceAreas: names,
		Stats:        stats,
	}, nil
}

// stats are global and ignore the search and area filters.
func (s *directoryService) stats(ctx context.Context) (models.DirectoryStats, error) {
	yes := true

	total, err := s.drivers.Count(ctx, models.DriverCountFilter{Approved: &yes})
	if err != nil {
		return models.DirectoryStats{}, err
	}
	online, err := s.drivers.Count(ctx, models.DriverCountFilter{Approved: &yes, Online: &yes})
	if err != nil {
		return models.DirectoryStats{}, err
	}

	areas, err := s.areas.CountActive(ctx)
	if err != nil {
		return models.DirectoryStats{}, err
	}

	return models.DirectoryStats{
		TotalDrivers:  total,
		OnlineDrivers: online,
		TotalAreas:    areas,
	}, nil
}
