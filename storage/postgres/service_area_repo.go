package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/storage"
)

type serviceAreaRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewServiceAreaRepo(db *pgxpool.Pool, log logger.ILogger) storage.IServiceAreaStorage {
	return &serviceAreaRepo{db: db, log: log}
}

const serviceAreaColumns = `id, name, is_active, sort_order, created_at, updated_at`

func (r *serviceAreaRepo) Create(ctx context.Context, area *models.ServiceArea) error {
	query := `
		INSERT INTO service_areas (name, is_active, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, area.Name, area.IsActive, area.SortOrder).
		Scan(&area.ID, &area.CreatedAt, &area.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create service area", logger.Error(err))
		return err
	}
	return nil
}

func (r *serviceAreaRepo) GetByID(ctx context.Context, id int64) (*models.ServiceArea, error) {
	var a models.ServiceArea
	err := r.db.QueryRow(ctx, `SELECT `+serviceAreaColumns+` FROM service_areas WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.IsActive, &a.SortOrder, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get service area", logger.Error(err))
		return nil, err
	}
	return &a, nil
}

func (r *serviceAreaRepo) Update(ctx context.Context, area *models.ServiceArea) error {
	query := `
		UPDATE service_areas SET name = $1, is_active = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, area.Name, area.IsActive, area.SortOrder, area.ID).Scan(&area.UpdatedAt)
	if err != nil {
		r.log.Error("failed to update service area", logger.Error(err), logger.Int64("service_area_id", area.ID))
		return err
	}
	return nil
}

// Delete relies on the ON DELETE SET NULL foreign key from drivers.
func (r *serviceAreaRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM service_areas WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete service area", logger.Error(err), logger.Int64("service_area_id", id))
	}
	return err
}

func (r *serviceAreaRepo) List(ctx context.Context, search string, limit, offset int) ([]*models.ServiceArea, int, error) {
	where := ""
	var args []any
	if search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		where = " WHERE name ILIKE $1"
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM service_areas`+where, args...).Scan(&total); err != nil {
		r.log.Error("failed to count service areas", logger.Error(err))
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + serviceAreaColumns + ` FROM service_areas` + where + ` ORDER BY name ASC, id ASC`
	if search != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}

	areas, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return areas, total, nil
}

func (r *serviceAreaRepo) GetActive(ctx context.Context) ([]*models.ServiceArea, error) {
	return r.query(ctx, `SELECT `+serviceAreaColumns+` FROM service_areas WHERE is_active = TRUE ORDER BY sort_order ASC, name ASC`)
}

func (r *serviceAreaRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM service_areas WHERE is_active = TRUE").Scan(&count)
	if err != nil {
		r.log.Error("failed to count active service areas", logger.Error(err))
	}
	return count, err
}

func (r *serviceAreaRepo) query(ctx context.Context, query string, args ...any) ([]*models.ServiceArea, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list service areas", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var areas []*models.ServiceArea
	for rows.Next() {
		var a models.ServiceArea
		if err := rows.Scan(&a.ID, &a.Name, &a.IsActive, &a.SortOrder, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		areas = append(areas, &a)
	}
	return areas, rows.Err()
}
