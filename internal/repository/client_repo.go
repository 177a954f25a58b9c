package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"

    "github.com/GTDGit/gtd_paygate/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ClientRepository is the registry of API clients allowed to request tokens.
type ClientRepository interface {
    GetByClientID(ctx context.Context, clientID string) (*models.Client, error)
    Upsert(ctx context.Context, client *models.Client) error
}

// PostgresClientRepository provides data access methods for clients table.
type PostgresClientRepository struct {
    db *sqlx.DB
}

// NewPostgresClientRepository creates a new PostgresClientRepository.
func NewPostgresClientRepository(db *sqlx.DB) *PostgresClientRepository {
    return &PostgresClientRepository{db: db}
}

// GetByClientID finds a client by public client identifier.
func (r *PostgresClientRepository) GetByClientID(ctx context.Context, clientID string) (*models.Client, error) {
    const q = `SELECT id, client_id, secret_hash, roles, is_active, created_at, updated_at
        FROM clients WHERE client_id = $1 LIMIT 1`

    stmt, err := r.db.PreparexContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer stmt.Close()

    var c models.Client
    // Explicit scan so roles (TEXT[]) goes through pq.Array.
    if err := stmt.QueryRowxContext(ctx, clientID).Scan(
        &c.ID,
        &c.ClientID,
        &c.SecretHash,
        pq.Array(&c.Roles),
        &c.IsActive,
        &c.CreatedAt,
        &c.UpdatedAt,
    ); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    if c.Roles == nil {
        c.Roles = []string{}
    }
    return &c, nil
}

// Upsert inserts the client or replaces its secret, roles and active flag.
func (r *PostgresClientRepository) Upsert(ctx context.Context, client *models.Client) error {
    query := `INSERT INTO clients (client_id, secret_hash, roles, is_active)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (client_id) DO UPDATE
              SET secret_hash = EXCLUDED.secret_hash, roles = EXCLUDED.roles,
                  is_active = EXCLUDED.is_active, updated_at = NOW()
              RETURNING id, created_at, updated_at`

    return r.db.QueryRowxContext(ctx, query,
        client.ClientID,
        client.SecretHash,
        pq.Array(client.Roles),
        client.IsActive,
    ).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}
