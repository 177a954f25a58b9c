package repository

import (
    "context"
    "sync"
    "time"

    "github.com/GTDGit/gtd_paygate/internal/models"
)

// MemoryClientRepository keeps the client registry in process memory.
type MemoryClientRepository struct {
    mu      sync.RWMutex
    clients map[string]*models.Client
    nextID  int
}

// NewMemoryClientRepository creates an empty in-memory registry.
func NewMemoryClientRepository() *MemoryClientRepository {
    return &MemoryClientRepository{clients: make(map[string]*models.Client)}
}

// GetByClientID returns a copy of the client so callers cannot mutate the registry.
func (r *MemoryClientRepository) GetByClientID(_ context.Context, clientID string) (*models.Client, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()

    c, ok := r.clients[clientID]
    if !ok {
        return nil, ErrNotFound
    }
    return copyClient(c), nil
}

// Upsert stores a copy of client, keeping the original id and creation time on replace.
func (r *MemoryClientRepository) Upsert(_ context.Context, client *models.Client) error {
    r.mu.Lock()
    defer r.mu.Unlock()

    now := time.Now().UTC()
    if existing, ok := r.clients[client.ClientID]; ok {
        client.ID = existing.ID
        client.CreatedAt = existing.CreatedAt
    } else {
        r.nextID++
        client.ID = r.nextID
        client.CreatedAt = now
    }
    client.UpdatedAt = now
    r.clients[client.ClientID] = copyClient(client)
    return nil
}

func copyClient(c *models.Client) *models.Client {
    cp := *c
    cp.Roles = append([]string{}, c.Roles...)
    return &cp
}
