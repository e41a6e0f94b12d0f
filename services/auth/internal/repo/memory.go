package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/services/auth/internal/models"
)

// MemoryRepo is the in-process credential store.
type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  uint
	byID    map[uint]models.User
	byEmail map[string]uint
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID:  1,
		byID:    make(map[uint]models.User),
		byEmail: make(map[string]uint),
	}
}

func (r *MemoryRepo) CreateUserIfNotExists(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = NormalizeEmail(u.Email)
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrUserAlreadyExist
	}
	now := time.Now().UTC()
	u.ID = r.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	r.nextID++
	r.byID[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryRepo) ListUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) SetEnabled(_ context.Context, id uint, enabled bool) (*models.User, error) {
	return r.mutate(id, func(u *models.User) { u.Enabled = enabled })
}

func (r *MemoryRepo) SetRole(_ context.Context, id uint, role string) (*models.User, error) {
	return r.mutate(id, func(u *models.User) { u.Role = role })
}

func (r *MemoryRepo) mutate(id uint, fn func(u *models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u
	return &u, nil
}

func (r *MemoryRepo) CountUsers(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}
