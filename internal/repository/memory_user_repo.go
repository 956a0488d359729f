package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/staffbook/internal/model"
)

// MemoryUserRepo はプロセス内メモリにユーザーを保持するリポジトリ。
type MemoryUserRepo struct {
	mu      sync.RWMutex
	users   map[string]*model.User
	byEmail map[string]string // lower(email) -> userID
}

// NewMemoryUserRepo は空のMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

// Create はユーザーを作成する。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicateEmail)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[key] = user.ID
	return nil
}

// FindByID は指定IDのユーザーを返す。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u := *stored
	return &u, nil
}

// FindByEmail はメールアドレスでユーザーを返す。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	u := *r.users[id]
	return &u, nil
}

// compile-time interface check
var _ UserRepository = (*MemoryUserRepo)(nil)
