package memory

import (
	"context"
	"fmt"

	"towtruck/pkg/models"
)

type adminRepo struct{ s *Store }

func (r *adminRepo) Create(_ context.Context, admin *models.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.admins {
		if a.Email == admin.Email {
			return fmt.Errorf("admins: duplicate email %q", admin.Email)
		}
	}
	r.s.nextAdmin++
	now := r.s.now()
	admin.ID, admin.CreatedAt, admin.UpdatedAt = r.s.nextAdmin, now, now
	cp := *admin
	r.s.admins[admin.ID] = &cp
	return nil
}

func (r *adminRepo) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.admins[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *adminRepo) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *adminRepo) EmailTaken(_ context.Context, email string, exceptID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.admins {
		if a.Email == email && a.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *adminRepo) UpdateProfile(_ context.Context, id int64, name, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a, ok := r.s.admins[id]; ok {
		a.Name, a.Email, a.UpdatedAt = name, email, r.s.now()
	}
	return nil
}

func (r *adminRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a, ok := r.s.admins[id]; ok {
		a.Password, a.UpdatedAt = hash, r.s.now()
	}
	return nil
}
