package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/staffbook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEmployeeRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEmployeeRepo()

	ann := &model.Employee{Name: "Ann", Email: "ann@x.io", Position: "Dev", Department: "R&D"}
	require.NoError(t, repo.Create(ctx, ann))
	require.NotEmpty(t, ann.ID)

	bob := &model.Employee{Name: "Bob", Email: "bob@x.io", Position: "QA", Department: "Ops"}
	require.NoError(t, repo.Create(ctx, bob))
	assert.NotEqual(t, ann.ID, bob.ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ann", all[0].Name)
	assert.Equal(t, "Bob", all[1].Name)

	update := &model.Employee{ID: ann.ID, Name: "Ann B", Email: "ann@x.io", Position: "Lead", Department: "R&D"}
	require.NoError(t, repo.Update(ctx, update))

	got, err := repo.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann B", got.Name)
	assert.Equal(t, "Lead", got.Position)
	assert.Equal(t, ann.CreatedAt, got.CreatedAt)

	require.NoError(t, repo.DeleteByID(ctx, bob.ID))
	assert.Equal(t, 1, repo.Count())

	got, err = repo.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// 返却値を変更しても内部状態に影響しない
func TestMemoryEmployeeRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEmployeeRepo()
	e := &model.Employee{Name: "Ann"}
	require.NoError(t, repo.Create(ctx, e))

	e.Name = "mutated"
	got, _ := repo.FindByID(ctx, e.ID)
	got.Name = "mutated again"

	again, _ := repo.FindByID(ctx, e.ID)
	assert.Equal(t, "Ann", again.Name)
}

func TestMemoryEmployeeRepo_MissingID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEmployeeRepo()

	require.ErrorIs(t, repo.Update(ctx, &model.Employee{ID: "missing"}), ErrNotFound)
	require.ErrorIs(t, repo.DeleteByID(ctx, "missing"), ErrNotFound)
}

func TestMemoryEmployeeRepo_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEmployeeRepo()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, &model.Employee{Name: fmt.Sprintf("e%d", i)})
		}(i)
	}
	wg.Wait()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestMemoryUserRepo_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	require.NoError(t, repo.Create(ctx, &model.User{Name: "Ann", Email: "Ann@X.io"}))
	err := repo.Create(ctx, &model.User{Name: "Ann2", Email: "ann@x.io"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	user, err := repo.FindByEmail(ctx, "ANN@x.IO")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ann", user.Name)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
}

func TestMemorySessionRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, &model.Session{ID: "live", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &model.Session{ID: "dead", UserID: "u1", ExpiresAt: now.Add(-time.Minute)}))

	live, err := repo.FindByID(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, live)

	dead, err := repo.FindByID(ctx, "dead")
	require.NoError(t, err)
	assert.Nil(t, dead)

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.DeleteByID(ctx, "live"))
	live, _ = repo.FindByID(ctx, "live")
	assert.Nil(t, live)
}
