// Copyright (c) 2026 Reelgate. All rights reserved.

package schema

// BillingEnrollmentTable represents the 'billing.enrollment' table
type BillingEnrollmentTable struct {
	Table     string
	ID        string
	UserID    string
	CourseID  string
	OrderID   string
	CreatedAt string
}

// BillingEnrollment is the schema definition for billing.enrollment
var BillingEnrollment = BillingEnrollmentTable{
	Table:     "billing.enrollment",
	ID:        "id",
	UserID:    "userid",
	CourseID:  "courseid",
	OrderID:   "orderid",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t BillingEnrollmentTable) Columns() []string {
	return []string{t.ID, t.UserID, t.CourseID, t.OrderID, t.CreatedAt}
}
