// Copyright (c) 2026 Reelgate. All rights reserved.

package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reelgate/reelgate/internal/platform/apperr"
	"github.com/reelgate/reelgate/internal/platform/database/schema"
	"github.com/reelgate/reelgate/internal/platform/dberr"
)

// PostgresStore implements [Store] using pgx against billing.payment.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the Postgres payment repository.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Create inserts a new payment row and hydrates the generated ID and timestamps.

Parameters:
  - context: context.Context
  - payment: *Payment (OrderID must be unique)

Returns:
  - error: apperr.Conflict on duplicate order ID, or execution failure
*/
func (store *PostgresStore) Create(context context.Context, payment *Payment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s, %s`,
		schema.BillingPayment.Table,
		schema.BillingPayment.UserID, schema.BillingPayment.CourseID, schema.BillingPayment.OrderID,
		schema.BillingPayment.SnapToken, schema.BillingPayment.Amount, schema.BillingPayment.Status,
		schema.BillingPayment.ID, schema.BillingPayment.CreatedAt, schema.BillingPayment.UpdatedAt,
	)

	err := store.pool.QueryRow(context, query,
		payment.UserID,
		payment.CourseID,
		payment.OrderID,
		payment.SnapToken,
		payment.Amount,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_payment_store_create_failed: %w", err))
	}

	return nil
}

/*
FindByOrderID retrieves a payment by its merchant order identifier.

Parameters:
  - context: context.Context
  - orderID: string

Returns:
  - *Payment: Hydrated payment entity
  - error: apperr.NotFound or database execution failure
*/
func (store *PostgresStore) FindByOrderID(context context.Context, orderID string) (*Payment, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.BillingPayment.ID, schema.BillingPayment.UserID, schema.BillingPayment.CourseID,
		schema.BillingPayment.OrderID, schema.BillingPayment.SnapToken, schema.BillingPayment.Amount,
		schema.BillingPayment.Status, schema.BillingPayment.GatewayResponse,
		schema.BillingPayment.CreatedAt, schema.BillingPayment.UpdatedAt,
		schema.BillingPayment.Table,
		schema.BillingPayment.OrderID,
	)

	payment := &Payment{}
	err := store.pool.QueryRow(context, query, orderID).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.CourseID,
		&payment.OrderID,
		&payment.SnapToken,
		&payment.Amount,
		&payment.Status,
		&payment.GatewayResponse,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Payment")
		}
		return nil, fmt.Errorf("postgres_payment_store_find_failed: %w", err)
	}

	return payment, nil
}

/*
ApplyNotification updates the lifecycle state of an order from a gateway
notification, retaining the raw payload for audit.

Parameters:
  - context: context.Context
  - orderID: string
  - status: string (gateway transaction status, stored verbatim)
  - amount: int64
  - raw: []byte (full notification JSON)

Returns:
  - error: apperr.NotFound when the order does not exist, or update failures
*/
func (store *PostgresStore) ApplyNotification(context context.Context, orderID, status string, amount int64, raw []byte) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1`,
		schema.BillingPayment.Table,
		schema.BillingPayment.Status, schema.BillingPayment.Amount,
		schema.BillingPayment.GatewayResponse, schema.BillingPayment.UpdatedAt,
		schema.BillingPayment.OrderID,
	)

	tag, err := store.pool.Exec(context, query, orderID, status, amount, raw, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_payment_store_apply_notification_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Payment")
	}

	return nil
}

/*
CreateEnrollment grants course access after a settled payment.

The (userid, courseid) pair carries a unique constraint and the insert uses
ON CONFLICT DO NOTHING, so gateway webhook retries never produce duplicate
grants.

Parameters:
  - context: context.Context
  - enrollment: *Enrollment

Returns:
  - error: Execution failure
*/
func (store *PostgresStore) CreateEnrollment(context context.Context, enrollment *Enrollment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING`,
		schema.BillingEnrollment.Table,
		schema.BillingEnrollment.UserID, schema.BillingEnrollment.CourseID, schema.BillingEnrollment.OrderID,
		schema.BillingEnrollment.UserID, schema.BillingEnrollment.CourseID,
	)

	if _, err := store.pool.Exec(context, query,
		enrollment.UserID, enrollment.CourseID, enrollment.OrderID,
	); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_payment_store_create_enrollment_failed: %w", err))
	}

	return nil
}

/*
ListByUser returns a page of the user's payments ordered newest first.

Parameters:
  - context: context.Context
  - userID: string (identity provider subject)
  - limit: int
  - offset: int

Returns:
  - []Payment: Page of payment records
  - int: Total number of payments for the user
  - error: Database retrieval failures
*/
func (store *PostgresStore) ListByUser(context context.Context, userID string, limit, offset int) ([]Payment, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.BillingPayment.Table, schema.BillingPayment.UserID)

	var total int
	if err := store.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_store_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3`,
		schema.BillingPayment.ID, schema.BillingPayment.UserID, schema.BillingPayment.CourseID,
		schema.BillingPayment.OrderID, schema.BillingPayment.SnapToken, schema.BillingPayment.Amount,
		schema.BillingPayment.Status, schema.BillingPayment.CreatedAt, schema.BillingPayment.UpdatedAt,
		schema.BillingPayment.Table,
		schema.BillingPayment.UserID,
		schema.BillingPayment.CreatedAt,
	)

	rows, err := store.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_store_list_failed: %w", err)
	}
	defer rows.Close()

	var results []Payment
	for rows.Next() {
		var payment Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.CourseID,
			&payment.OrderID,
			&payment.SnapToken,
			&payment.Amount,
			&payment.Status,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, payment)
	}

	return results, total, rows.Err()
}
