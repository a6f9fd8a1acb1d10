package memory

import (
	"context"
	"sync"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
	"github.com/Vasu1712/gymchat-backend/internal/models"
)

// Directory is an in-memory user directory.
// An open directory resolves any non-empty id it has not been told about to a bare profile.
type Directory struct {
	mu    sync.RWMutex
	users map[string]models.UserRef
	open  bool
}

func NewDirectory(users ...models.UserRef) *Directory {
	d := &Directory{users: make(map[string]models.UserRef, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// NewOpenDirectory trusts every identity handed to it by the auth layer.
func NewOpenDirectory() *Directory {
	d := NewDirectory()
	d.open = true
	return d
}

func (d *Directory) Add(u models.UserRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *Directory) Resolve(_ context.Context, userID string) (*models.UserRef, error) {
	if userID == "" {
		return nil, apperr.ErrNotFound
	}
	d.mu.RLock()
	u, ok := d.users[userID]
	d.mu.RUnlock()
	if ok {
		return &u, nil
	}
	if d.open {
		return &models.UserRef{ID: userID}, nil
	}
	return nil, apperr.ErrNotFound
}
