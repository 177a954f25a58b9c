package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_paygate/internal/models"
)

// PaymentMutation edits a record in place. Returning an error discards the edit.
type PaymentMutation func(rec *models.PaymentRecord) error

// PaymentRepository stores payment records keyed by id. Records are never deleted.
type PaymentRepository interface {
	Insert(ctx context.Context, rec *models.PaymentRecord) error
	GetByID(ctx context.Context, id string) (*models.PaymentRecord, error)
	// Update applies fn atomically with respect to every other read and write
	// of the same record and returns the committed snapshot.
	Update(ctx context.Context, id string, fn PaymentMutation) (*models.PaymentRecord, error)
}

// ErrDuplicateID is returned when Insert receives an id that already exists.
var ErrDuplicateID = errors.New("duplicate payment id")

const paymentColumns = `id, amount, currency, masked_card, status, created_at, last_updated,
	transaction_reference, processed_by, reversed_by, cancelled_by`

// PostgresPaymentRepository handles data access for payments.
type PostgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository.
func NewPostgresPaymentRepository(db *sqlx.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

// Insert writes a new payment row.
func (r *PostgresPaymentRepository) Insert(ctx context.Context, rec *models.PaymentRecord) error {
	const q = `
        INSERT INTO payments (
            id, amount, currency, masked_card, status, created_at, last_updated,
            transaction_reference, processed_by, reversed_by, cancelled_by
        ) VALUES (
            :id, :amount, :currency, :masked_card, :status, :created_at, :last_updated,
            :transaction_reference, :processed_by, :reversed_by, :cancelled_by
        ) ON CONFLICT (id) DO NOTHING`

	res, err := r.db.NamedExecContext(ctx, q, rec)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicateID
	}
	return nil
}

// GetByID returns the payment by id.
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	if err := r.db.GetContext(ctx, &rec, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Update locks the row, applies fn and writes back the mutable columns.
func (r *PostgresPaymentRepository) Update(ctx context.Context, id string, fn PaymentMutation) (*models.PaymentRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rec models.PaymentRecord
	if err := tx.GetContext(ctx, &rec, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := fn(&rec); err != nil {
		return nil, err
	}

	const q = `
        UPDATE payments SET
            status = :status,
            last_updated = :last_updated,
            reversed_by = :reversed_by,
            cancelled_by = :cancelled_by
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, q, &rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &rec, nil
}
