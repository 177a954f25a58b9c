package database

import (
    "context"
    "errors"
    "fmt"
    "net/url"
    "time"

    "github.com/golang-migrate/migrate/v4"
    "github.com/golang-migrate/migrate/v4/database/postgres"
    _ "github.com/golang-migrate/migrate/v4/source/file"
    "github.com/jmoiron/sqlx"
    _ "github.com/lib/pq" // PostgreSQL driver
    "github.com/rs/zerolog/log"

    appconfig "github.com/GTDGit/gtd_paygate/internal/config"
)

const (
    maxAttempts = 5
    baseDelay   = 500 * time.Millisecond
    maxDelay    = 5 * time.Second
)

// DSN builds the lib/pq connection URL for cfg.
func DSN(cfg *appconfig.DatabaseConfig) string {
    return fmt.Sprintf(
        "postgres://%s:%s@%s:%s/%s?sslmode=%s",
        url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
    )
}

// Connect opens the payments database, retrying while it is still starting up.
// The returned pool has been pinged.
func Connect(ctx context.Context, cfg *appconfig.DatabaseConfig) (*sqlx.DB, error) {
    if cfg == nil {
        return nil, errors.New("nil database config")
    }

    var lastErr error
    for attempt := 1; attempt <= maxAttempts; attempt++ {
        db, err := sqlx.Open("postgres", DSN(cfg))
        if err == nil {
            db.SetMaxOpenConns(25)
            db.SetMaxIdleConns(5)
            db.SetConnMaxLifetime(5 * time.Minute)

            pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
            err = db.PingContext(pingCtx)
            cancel()
            if err == nil {
                return db, nil
            }
            _ = db.Close()
        }
        lastErr = err

        log.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready")
        select {
        case <-time.After(Backoff(attempt)):
        case <-ctx.Done():
            return nil, ctx.Err()
        }
    }

    return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxAttempts, lastErr)
}

// Backoff returns baseDelay * 2^(attempt-1), capped at maxDelay.
func Backoff(attempt int) time.Duration {
    if attempt < 1 {
        attempt = 1
    }
    if attempt > 8 {
        return maxDelay
    }
    d := baseDelay << (attempt - 1)
    if d > maxDelay {
        d = maxDelay
    }
    return d
}

// Migrate applies the SQL migrations found in dir.
func Migrate(db *sqlx.DB, dir string) error {
    driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
    if err != nil {
        return fmt.Errorf("could not create migration driver: %w", err)
    }

    m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
    if err != nil {
        return fmt.Errorf("could not create migration instance: %w", err)
    }

    if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
        return fmt.Errorf("could not run migrations: %w", err)
    }
    return nil
}
