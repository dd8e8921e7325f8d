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

type adminRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewAdminRepo(db *pgxpool.Pool, log logger.ILogger) storage.IAdminStorage {
	return &adminRepo{db: db, log: log}
}

const adminColumns = `id, name, email, password, created_at, updated_at`

func (r *adminRepo) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, admin.Name, admin.Email, admin.Password).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create admin", logger.Error(err))
		return err
	}
	return nil
}

func (r *adminRepo) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	return r.getOne(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.getOne(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email)
}

func (r *adminRepo) getOne(ctx context.Context, query string, arg any) (*models.Admin, error) {
	var a models.Admin
	err := r.db.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.Password, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get admin", logger.Error(err))
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1 AND id <> $2)`, email, exceptID).Scan(&exists)
	if err != nil {
		r.log.Error("failed to check admin email", logger.Error(err))
	}
	return exists, err
}

func (r *adminRepo) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	_, err := r.db.Exec(ctx, "UPDATE admins SET name=$1, email=$2, updated_at=NOW() WHERE id=$3", name, email, id)
	if err != nil {
		r.log.Error("failed to update admin profile", logger.Error(err), logger.Int64("admin_id", id))
	}
	return err
}

func (r *adminRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.Exec(ctx, "UPDATE admins SET password=$1, updated_at=NOW() WHERE id=$2", hash, id)
	if err != nil {
		r.log.Error("failed to update admin password", logger.Error(err), logger.Int64("admin_id", id))
	}
	return err
}
