package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/staffbook/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	insertSessionQuery = `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	selectSessionQuery = `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()`

	deleteSessionQuery         = `DELETE FROM sessions WHERE id = $1`
	deleteExpiredSessionsQuery = `DELETE FROM sessions WHERE expires_at <= now()`
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db       DB
	observer QueryObserver
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db DB, observer QueryObserver) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db, observer: observer}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	defer observe(r.observer, "create_session", time.Now())

	_, err := r.db.Exec(ctx, insertSessionQuery,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	defer observe(r.observer, "find_session", time.Now())

	session := &model.Session{}
	err := r.db.QueryRow(ctx, selectSessionQuery, id).
		Scan(&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	defer observe(r.observer, "delete_session", time.Now())

	if _, err := r.db.Exec(ctx, deleteSessionQuery, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	defer observe(r.observer, "delete_expired_sessions", time.Now())

	tag, err := r.db.Exec(ctx, deleteExpiredSessionsQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
