package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/storage"
)

type driverRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDriverRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDriverStorage {
	return &driverRepo{db: db, log: log}
}

const driverSelect = `
	SELECT d.id, d.name, d.email, d.password, d.phone_number, d.avatar, d.service_area_id, sa.name,
		d.is_approved, d.is_online, d.approved_by, d.approved_at, d.created_at, d.updated_at
	FROM drivers d
	LEFT JOIN service_areas sa ON sa.id = d.service_area_id
`

func scanDriver(row pgx.Row) (*models.Driver, error) {
	var d models.Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Password, &d.PhoneNumber, &d.Avatar, &d.ServiceAreaID, &d.ServiceAreaName,
		&d.IsApproved, &d.IsOnline, &d.ApprovedBy, &d.ApprovedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *driverRepo) Create(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (name, email, password, phone_number, avatar, service_area_id, is_approved, is_online, approved_by, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		driver.Name,
		driver.Email,
		driver.Password,
		driver.PhoneNumber,
		driver.Avatar,
		driver.ServiceAreaID,
		driver.IsApproved,
		driver.IsOnline,
		driver.ApprovedBy,
		driver.ApprovedAt,
	).Scan(&driver.ID, &driver.CreatedAt, &driver.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create driver", logger.Error(err))
		return err
	}
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, driverSelect+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get driver by id", logger.Error(err))
		return nil, err
	}
	return d, nil
}

func (r *driverRepo) GetByEmail(ctx context.Context, email string) (*models.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, driverSelect+` WHERE d.email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get driver by email", logger.Error(err))
		return nil, err
	}
	return d, nil
}

func (r *driverRepo) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM drivers WHERE email = $1 AND id <> $2)`, email, exceptID).Scan(&exists)
	if err != nil {
		r.log.Error("failed to check driver email", logger.Error(err))
	}
	return exists, err
}

func (r *driverRepo) Update(ctx context.Context, driver *models.Driver) error {
	query := `
		UPDATE drivers
		SET name = $1, email = $2, password = $3, phone_number = $4, avatar = $5, service_area_id = $6,
			is_approved = $7, approved_by = $8, approved_at = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		driver.Name,
		driver.Email,
		driver.Password,
		driver.PhoneNumber,
		driver.Avatar,
		driver.ServiceAreaID,
		driver.IsApproved,
		driver.ApprovedBy,
		driver.ApprovedAt,
		driver.ID,
	).Scan(&driver.UpdatedAt)
	if err != nil {
		r.log.Error("failed to update driver", logger.Error(err), logger.Int64("driver_id", driver.ID))
		return err
	}
	return nil
}

func (r *driverRepo) UpdateProfile(ctx context.Context, id int64, name, phone string, serviceAreaID int64, avatar *string) error {
	query := `
		UPDATE drivers
		SET name = $1, phone_number = $2, service_area_id = $3, avatar = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, name, phone, serviceAreaID, avatar, id)
	if err != nil {
		r.log.Error("failed to update driver profile", logger.Error(err), logger.Int64("driver_id", id))
	}
	return err
}

func (r *driverRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.Exec(ctx, "UPDATE drivers SET password=$1, updated_at=NOW() WHERE id=$2", hash, id)
	if err != nil {
		r.log.Error("failed to update driver password", logger.Error(err), logger.Int64("driver_id", id))
	}
	return err
}

func (r *driverRepo) Approve(ctx context.Context, id, adminID int64, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE drivers
		SET is_approved = TRUE, approved_by = $1, approved_at = $2, updated_at = NOW()
		WHERE id = $3 AND is_approved = FALSE
	`, adminID, at, id)
	if err != nil {
		r.log.Error("failed to approve driver", logger.Error(err), logger.Int64("driver_id", id))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *driverRepo) ToggleOnline(ctx context.Context, id int64) (bool, error) {
	var online bool
	err := r.db.QueryRow(ctx, `
		UPDATE drivers SET is_online = NOT is_online, updated_at = NOW()
		WHERE id = $1
		RETURNING is_online
	`, id).Scan(&online)
	if err != nil {
		r.log.Error("failed to toggle driver online status", logger.Error(err), logger.Int64("driver_id", id))
		return false, err
	}
	return online, nil
}

func (r *driverRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete driver", logger.Error(err), logger.Int64("driver_id", id))
	}
	return err
}

func (r *driverRepo) Search(ctx context.Context, q models.DriverQuery) ([]*models.Driver, int, error) {
	where, args := driverFilter(q)

	var total int
	countQuery := `SELECT count(*) FROM drivers d LEFT JOIN service_areas sa ON sa.id = d.service_area_id` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.log.Error("failed to count drivers", logger.Error(err))
		return nil, 0, err
	}

	order := ` ORDER BY d.created_at DESC, d.id DESC`
	if q.Order == models.DriverOrderOnlineFirst {
		order = ` ORDER BY d.is_online DESC, d.name ASC, d.id ASC`
	}

	query := driverSelect + where + order
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to search drivers", logger.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, 0, err
		}
		drivers = append(drivers, d)
	}
	return drivers, total, rows.Err()
}

func driverFilter(q models.DriverQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ApprovedOnly {
		conds = append(conds, "d.is_approved = TRUE")
	}
	if q.Search != "" {
		p := arg("%" + escapeLike(q.Search) + "%")
		cond := "d.name ILIKE " + p + " OR d.phone_number ILIKE " + p
		if q.SearchEmail {
			cond += " OR d.email ILIKE " + p
		}
		conds = append(conds, "("+cond+")")
	}
	if q.AreaName != "" {
		conds = append(conds, "sa.name = "+arg(q.AreaName))
	}
	switch q.Status {
	case models.DriverStatusApproved:
		conds = append(conds, "d.is_approved = TRUE")
	case models.DriverStatusPending:
		conds = append(conds, "d.is_approved = FALSE")
	case models.DriverStatusOnline:
		conds = append(conds, "d.is_online = TRUE")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *driverRepo) Count(ctx context.Context, f models.DriverCountFilter) (int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Approved != nil {
		args = append(args, *f.Approved)
		conds = append(conds, fmt.Sprintf("is_approved = $%d", len(args)))
	}
	if f.Online != nil {
		args = append(args, *f.Online)
		conds = append(conds, fmt.Sprintf("is_online = $%d", len(args)))
	}

	query := "SELECT count(*) FROM drivers"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		r.log.Error("failed to count drivers", logger.Error(err))
	}
	return count, err
}
