// Package repository はデータ永続化のインターフェースと実装を提供する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/staffbook/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound は対象レコードが存在しないことを示す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail は同じメールアドレスのユーザーが既に存在することを示す。
	ErrDuplicateEmail = errors.New("email already registered")
)

// DB はリポジトリが使用するPostgreSQL操作の部分集合。
// *pgxpool.Pool とpgxmockの両方が満たす。
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QueryObserver はクエリの所要時間を記録する。nilの場合は記録しない。
type QueryObserver interface {
	ObserveDBQuery(query string, duration time.Duration)
}

// EmployeeRepository は従業員データの永続化インターフェース。
type EmployeeRepository interface {
	// Create は従業員を保存する。IDが空の場合はストアが採番し、eに書き戻す。
	Create(ctx context.Context, e *model.Employee) error

	// FindAll は全従業員を作成順に取得する。
	FindAll(ctx context.Context) ([]*model.Employee, error)

	// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Employee, error)

	// Update は指定IDの従業員の業務フィールドを更新する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, e *model.Employee) error

	// DeleteByID は指定IDの従業員を削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// observe はクエリの所要時間をobserverに記録する。
// defer observe(o, "query", time.Now()) の形で使用する。
func observe(o QueryObserver, query string, start time.Time) {
	if o == nil {
		return
	}
	o.ObserveDBQuery(query, time.Since(start))
}
