package models

import "time"

// Client represents a registered API consumer allowed to request bearer tokens.
// The secret hash is never serialized.
type Client struct {
    ID         int       `db:"id" json:"id"`
    ClientID   string    `db:"client_id" json:"clientId"`
    SecretHash string    `db:"secret_hash" json:"-"`
    Roles      []string  `db:"roles" json:"roles"`
    IsActive   bool      `db:"is_active" json:"isActive"`
    CreatedAt  time.Time `db:"created_at" json:"createdAt"`
    UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// HasRole reports whether the client was granted role.
func (c *Client) HasRole(role string) bool {
    for _, r := range c.Roles {
        if r == role {
            return true
        }
    }
    return false
}
