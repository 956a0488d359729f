package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/staffbook/internal/model"
)

// MemoryEmployeeRepo はプロセス内メモリに従業員を保持するリポジトリ。
// STORE_DRIVER=memory での起動およびテストで使用する。
type MemoryEmployeeRepo struct {
	mu      sync.RWMutex
	records map[string]*model.Employee
	order   []string
}

// NewMemoryEmployeeRepo は空のMemoryEmployeeRepoを生成する。
func NewMemoryEmployeeRepo() *MemoryEmployeeRepo {
	return &MemoryEmployeeRepo{
		records: make(map[string]*model.Employee),
	}
}

// Create は従業員を保存する。IDが空の場合はUUIDで採番する。
func (r *MemoryEmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if _, exists := r.records[e.ID]; exists {
		return fmt.Errorf("failed to create employee: duplicate id %s", e.ID)
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	stored := *e
	r.records[e.ID] = &stored
	r.order = append(r.order, e.ID)
	return nil
}

// FindAll は全従業員を作成順に返す。返却値は内部状態のコピー。
func (r *MemoryEmployeeRepo) FindAll(ctx context.Context) ([]*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employees := make([]*model.Employee, 0, len(r.order))
	for _, id := range r.order {
		e := *r.records[id]
		employees = append(employees, &e)
	}
	return employees, nil
}

// FindByID は指定IDの従業員を返す。見つからない場合はnilを返す。
func (r *MemoryEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	e := *stored
	return &e, nil
}

// Update は指定IDの従業員の業務フィールドを更新する。
func (r *MemoryEmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.records[e.ID]
	if !ok {
		return fmt.Errorf("employee %s: %w", e.ID, ErrNotFound)
	}
	stored.Apply(e.Input())
	stored.UpdatedAt = time.Now().UTC()

	e.CreatedAt = stored.CreatedAt
	e.UpdatedAt = stored.UpdatedAt
	return nil
}

// DeleteByID は指定IDの従業員を削除する。
func (r *MemoryEmployeeRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	delete(r.records, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count は保持している従業員数を返す。
func (r *MemoryEmployeeRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// compile-time interface check
var _ EmployeeRepository = (*MemoryEmployeeRepo)(nil)
