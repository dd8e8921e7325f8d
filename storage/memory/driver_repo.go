package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"towtruck/pkg/models"
)

type driverRepo struct{ s *Store }

// snapshot copies d and resolves the joined service area name.
// Callers hold the lock.
func (r *driverRepo) snapshot(d *models.Driver) *models.Driver {
	cp := *d
	cp.ServiceAreaName = nil
	if d.ServiceAreaID != nil {
		if a, ok := r.s.areas[*d.ServiceAreaID]; ok {
			name := a.Name
			cp.ServiceAreaName = &name
		}
	}
	return &cp
}

func (r *driverRepo) Create(_ context.Context, driver *models.Driver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.drivers {
		if d.Email == driver.Email {
			return fmt.Errorf("drivers: duplicate email %q", driver.Email)
		}
	}
	r.s.nextDriver++
	now := r.s.now()
	driver.ID, driver.CreatedAt, driver.UpdatedAt = r.s.nextDriver, now, now
	cp := *driver
	r.s.drivers[driver.ID] = &cp
	return nil
}

func (r *driverRepo) GetByID(_ context.Context, id int64) (*models.Driver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.drivers[id]
	if !ok {
		return nil, nil
	}
	return r.snapshot(d), nil
}

func (r *driverRepo) GetByEmail(_ context.Context, email string) (*models.Driver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.drivers {
		if d.Email == email {
			return r.snapshot(d), nil
		}
	}
	return nil, nil
}

func (r *driverRepo) EmailTaken(_ context.Context, email string, exceptID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.drivers {
		if d.Email == email && d.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *driverRepo) Update(_ context.Context, driver *models.Driver) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drivers[driver.ID]
	if !ok {
		return fmt.Errorf("drivers: no row with id %d", driver.ID)
	}
	online := d.IsOnline
	*d = *driver
	d.IsOnline = online
	d.ServiceAreaName = nil
	d.UpdatedAt = r.s.now()
	driver.UpdatedAt = d.UpdatedAt
	return nil
}

func (r *driverRepo) UpdateProfile(_ context.Context, id int64, name, phone string, serviceAreaID int64, avatar *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drivers[id]
	if !ok {
		return nil
	}
	d.Name, d.PhoneNumber, d.ServiceAreaID, d.Avatar = name, phone, &serviceAreaID, avatar
	d.UpdatedAt = r.s.now()
	return nil
}

func (r *driverRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if d, ok := r.s.drivers[id]; ok {
		d.Password, d.UpdatedAt = hash, r.s.now()
	}
	return nil
}

func (r *driverRepo) Approve(_ context.Context, id, adminID int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drivers[id]
	if !ok || d.IsApproved {
		return false, nil
	}
	d.IsApproved, d.ApprovedBy, d.ApprovedAt, d.UpdatedAt = true, &adminID, &at, r.s.now()
	return true, nil
}

func (r *driverRepo) ToggleOnline(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drivers[id]
	if !ok {
		return false, fmt.Errorf("drivers: no row with id %d", id)
	}
	d.IsOnline = !d.IsOnline
	d.UpdatedAt = r.s.now()
	return d.IsOnline, nil
}

func (r *driverRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.drivers, id)
	for sid, sess := range r.s.sessions {
		if sess.DriverID != nil && *sess.DriverID == id {
			delete(r.s.sessions, sid)
		}
	}
	return nil
}

func (r *driverRepo) Search(_ context.Context, q models.DriverQuery) ([]*models.Driver, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Driver
	for _, d := range r.s.drivers {
		snap := r.snapshot(d)
		if matches(snap, q) {
			matched = append(matched, snap)
		}
	}

	if q.Order == models.DriverOrderOnlineFirst {
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if a.IsOnline != b.IsOnline {
				return a.IsOnline
			}
			if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
				return la < lb
			}
			return a.ID < b.ID
		})
	} else {
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		})
	}

	total := len(matched)
	if q.Limit > 0 {
		if q.Offset >= total {
			return nil, total, nil
		}
		end := q.Offset + q.Limit
		if end > total {
			end = total
		}
		matched = matched[q.Offset:end]
	}
	return matched, total, nil
}

func matches(d *models.Driver, q models.DriverQuery) bool {
	if q.ApprovedOnly && !d.IsApproved {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hit := strings.Contains(strings.ToLower(d.Name), needle) ||
			strings.Contains(strings.ToLower(d.PhoneNumber), needle) ||
			(q.SearchEmail && strings.Contains(strings.ToLower(d.Email), needle))
		if !hit {
			return false
		}
	}
	if q.AreaName != "" && (d.ServiceAreaName == nil || *d.ServiceAreaName != q.AreaName) {
		return false
	}
	switch q.Status {
	case models.DriverStatusApproved:
		return d.IsApproved
	case models.DriverStatusPending:
		return !d.IsApproved
	case models.DriverStatusOnline:
		return d.IsOnline
	}
	return true
}

func (r *driverRepo) Count(_ context.Context, f models.DriverCountFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, d := range r.s.drivers {
		if f.Approved != nil && d.IsApproved != *f.Approved {
			continue
		}
		if f.Online != nil && d.IsOnline != *f.Online {
			continue
		}
		n++
	}
	return n, nil
}
