package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"towtruck/pkg/models"
)

type serviceAreaRepo struct{ s *Store }

func (r *serviceAreaRepo) Create(_ context.Context, area *models.ServiceArea) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextArea++
	now := r.s.now()
	area.ID, area.CreatedAt, area.UpdatedAt = r.s.nextArea, now, now
	cp := *area
	r.s.areas[area.ID] = &cp
	return nil
}

func (r *serviceAreaRepo) GetByID(_ context.Context, id int64) (*models.ServiceArea, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.areas[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *serviceAreaRepo) Update(_ context.Context, area *models.ServiceArea) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.areas[area.ID]
	if !ok {
		return fmt.Errorf("service_areas: no row with id %d", area.ID)
	}
	a.Name, a.IsActive, a.SortOrder, a.UpdatedAt = area.Name, area.IsActive, area.SortOrder, r.s.now()
	area.UpdatedAt = a.UpdatedAt
	return nil
}

func (r *serviceAreaRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.areas, id)
	for _, d := range r.s.drivers {
		if d.ServiceAreaID != nil && *d.ServiceAreaID == id {
			d.ServiceAreaID = nil
		}
	}
	return nil
}

func (r *serviceAreaRepo) List(_ context.Context, search string, limit, offset int) ([]*models.ServiceArea, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(search)
	var matched []*models.ServiceArea
	for _, a := range r.s.areas {
		if search != "" && !strings.Contains(strings.ToLower(a.Name), needle) {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *serviceAreaRepo) GetActive(_ context.Context) ([]*models.ServiceArea, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var active []*models.ServiceArea
	for _, a := range r.s.areas {
		if a.IsActive {
			cp := *a
			active = append(active, &cp)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].SortOrder != active[j].SortOrder {
			return active[i].SortOrder < active[j].SortOrder
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

func (r *serviceAreaRepo) CountActive(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, a := range r.s.areas {
		if a.IsActive {
			n++
		}
	}
	return n, nil
}
