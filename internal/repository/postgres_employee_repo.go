package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/staffbook/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	insertEmployeeQuery = `
		INSERT INTO employees (id, name, email, position, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectEmployeesQuery = `
		SELECT id, name, email, position, department, created_at, updated_at
		FROM employees
		ORDER BY created_at, id`

	selectEmployeeByIDQuery = `
		SELECT id, name, email, position, department, created_at, updated_at
		FROM employees
		WHERE id = $1`

	updateEmployeeQuery = `
		UPDATE employees
		SET name = $2, email = $3, position = $4, department = $5, updated_at = $6
		WHERE id = $1`

	deleteEmployeeQuery = `DELETE FROM employees WHERE id = $1`
)

// PostgresEmployeeRepo はPostgreSQLを使用した従業員リポジトリ。
type PostgresEmployeeRepo struct {
	db       DB
	observer QueryObserver
}

// NewPostgresEmployeeRepo はPostgresEmployeeRepoを生成する。
// observerがnilの場合はクエリ時間を記録しない。
func NewPostgresEmployeeRepo(db DB, observer QueryObserver) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{db: db, observer: observer}
}

// Create は従業員を作成する。IDはUUIDで採番する。
func (r *PostgresEmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	defer observe(r.observer, "create_employee", time.Now())

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.Exec(ctx, insertEmployeeQuery,
		e.ID, e.Name, e.Email, e.Position, e.Department, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// FindAll は全従業員を作成順に取得する。
func (r *PostgresEmployeeRepo) FindAll(ctx context.Context) ([]*model.Employee, error) {
	defer observe(r.observer, "find_all_employees", time.Now())

	rows, err := r.db.Query(ctx, selectEmployeesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]*model.Employee, 0)
	for rows.Next() {
		e := &model.Employee{}
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// FindByID は指定IDの従業員を取得する。
// IDがUUID形式でない場合を含め、見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	if !isUUID(id) {
		return nil, nil
	}

	defer observe(r.observer, "find_employee_by_id", time.Now())

	e := &model.Employee{}
	err := r.db.QueryRow(ctx, selectEmployeeByIDQuery, id).
		Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}

	return e, nil
}

// Update は指定IDの従業員の業務フィールドを更新する。
func (r *PostgresEmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	if !isUUID(e.ID) {
		return fmt.Errorf("employee %s: %w", e.ID, ErrNotFound)
	}

	defer observe(r.observer, "update_employee", time.Now())

	e.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, updateEmployeeQuery,
		e.ID, e.Name, e.Email, e.Position, e.Department, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

// DeleteByID は指定IDの従業員を削除する。
func (r *PostgresEmployeeRepo) DeleteByID(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}

	defer observe(r.observer, "delete_employee", time.Now())

	tag, err := r.db.Exec(ctx, deleteEmployeeQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return nil
}

// isUUID はidがUUIDとして解釈できるかを返す。
// uuid型カラムに不正な文字列を渡すとクエリ自体が失敗するため、事前に判定する。
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// compile-time interface check
var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)
