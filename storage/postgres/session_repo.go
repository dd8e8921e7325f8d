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

type sessionRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewSessionRepo(db *pgxpool.Pool, log logger.ILogger) storage.ISessionStorage {
	return &sessionRepo{db: db, log: log}
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(ctx, `
		SELECT id, admin_id, driver_id, csrf_token, flash, remember, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > NOW()
	`, id).Scan(&s.ID, &s.AdminID, &s.DriverID, &s.CSRFToken, &s.Flash, &s.Remember, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get session", logger.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Save(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (id, admin_id, driver_id, csrf_token, flash, remember, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET admin_id = EXCLUDED.admin_id,
			driver_id = EXCLUDED.driver_id,
			csrf_token = EXCLUDED.csrf_token,
			flash = EXCLUDED.flash,
			remember = EXCLUDED.remember,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.AdminID, s.DriverID, s.CSRFToken, s.Flash, s.Remember, s.ExpiresAt)
	if err != nil {
		r.log.Error("failed to save session", logger.Error(err))
	}
	return err
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete session", logger.Error(err))
	}
	return err
}

func (r *sessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		r.log.Error("failed to purge expired sessions", logger.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
