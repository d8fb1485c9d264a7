// Copyright (c) 2026 Reelgate. All rights reserved.

/*
Package payments records course purchases made through the hosted Snap
checkout gateway.

Reelgate never touches card data: checkout creates a transaction at the
gateway and hands the resulting snap token to the frontend, which opens the
gateway's hosted payment page. The gateway reports outcomes asynchronously
via signed webhook notifications, which this package persists.

# Ownership

User identity belongs to the external identity provider; payments store the
provider's subject string, not a local user row.
*/
package payments

import (
	"context"
	"time"
)

// Transaction statuses reported by the gateway. Stored verbatim — the
// gateway's vocabulary is the source of truth for payment state.
const (
	StatusPending    = "pending"
	StatusSettlement = "settlement"
	StatusCapture    = "capture"
	StatusDeny       = "deny"
	StatusCancel     = "cancel"
	StatusExpire     = "expire"
)

// Payment is a single checkout attempt and its lifecycle.
type Payment struct {
	ID       int64  `json:"id"`
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id,omitempty"`

	// OrderID is the merchant-side identifier sent to the gateway and echoed
	// back in every notification.
	OrderID string `json:"order_id"`

	// SnapToken opens the gateway's hosted payment page.
	SnapToken string `json:"snap_token,omitempty"`

	Amount int64  `json:"amount"`
	Status string `json:"status"`

	// GatewayResponse retains the raw notification JSON for audit and
	// dispute handling. Never serialized to clients.
	GatewayResponse []byte `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enrollment grants a user access to a course. Rows are created when the
// gateway reports a successful payment; there is no other enrollment path.
type Enrollment struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	OrderID   string    `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

// settled reports whether a gateway status means the money arrived. Capture
// is the card-payment variant of settlement.
func settled(status string) bool {
	return status == StatusSettlement || status == StatusCapture
}

// Store is the persistence contract for payment records.
type Store interface {
	// Create inserts a new payment row.
	Create(ctx context.Context, payment *Payment) error

	// FindByOrderID returns the payment for a merchant order ID, or
	// an apperr NotFound.
	FindByOrderID(ctx context.Context, orderID string) (*Payment, error)

	// ApplyNotification updates status, amount, and the raw gateway payload
	// for an existing order.
	ApplyNotification(ctx context.Context, orderID, status string, amount int64, raw []byte) error

	// ListByUser returns a page of the user's payments, newest first,
	// along with the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Payment, int, error)

	// CreateEnrollment grants course access. Repeated grants for the same
	// user and course are no-ops.
	CreateEnrollment(ctx context.Context, enrollment *Enrollment) error
}
