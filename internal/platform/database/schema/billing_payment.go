// Copyright (c) 2026 Reelgate. All rights reserved.

// Package schema centralizes table and column identifiers so repositories
// never embed raw SQL names. Renaming a column is a one-line change here.
package schema

// BillingPaymentTable represents the 'billing.payment' table
type BillingPaymentTable struct {
	Table           string
	ID              string
	UserID          string
	CourseID        string
	OrderID         string
	SnapToken       string
	Amount          string
	Status          string
	GatewayResponse string
	CreatedAt       string
	UpdatedAt       string
}

// BillingPayment is the schema definition for billing.payment
var BillingPayment = BillingPaymentTable{
	Table:           "billing.payment",
	ID:              "id",
	UserID:          "userid",
	CourseID:        "courseid",
	OrderID:         "orderid",
	SnapToken:       "snaptoken",
	Amount:          "amount",
	Status:          "status",
	GatewayResponse: "gatewayresponse",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t BillingPaymentTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.CourseID, t.OrderID, t.SnapToken,
		t.Amount, t.Status, t.GatewayResponse, t.CreatedAt, t.UpdatedAt,
	}
}
