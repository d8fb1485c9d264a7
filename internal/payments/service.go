// Copyright (c) 2026 Reelgate. All rights reserved.

package payments

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/reelgate/reelgate/internal/platform/apperr"
	"github.com/reelgate/reelgate/pkg/pagination"
)

// Service coordinates checkout registration and webhook reconciliation.
type Service struct {
	store   Store
	gateway Gateway
	log     *slog.Logger

	now func() time.Time
}

// NewService wires the payment workflow with its store and gateway.
func NewService(store Store, gateway Gateway, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

// CheckoutInput is the caller-supplied portion of a checkout.
type CheckoutInput struct {
	UserID       string
	CustomerName string
	Email        string
	Phone        string
	CourseID     string
	CourseName   string
	Amount       int64
}

// CheckoutResult is returned to the frontend to open the hosted payment page.
type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
}

// Notification is a gateway webhook payload. Gross amount arrives as a
// decimal string ("350000.00") and the signature covers its exact wire form.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

/*
Checkout registers a new order with the gateway and records it as pending.

Parameters:
  - ctx: context.Context
  - input: CheckoutInput (Amount must be positive)

Returns:
  - *CheckoutResult: Order ID, snap token, and hosted redirect URL
  - error: apperr.Upstream on gateway failure, or persistence failures
*/
func (service *Service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	orderID := service.newOrderID()

	transaction, err := service.gateway.CreateTransaction(ctx, CheckoutOrder{
		OrderID:      orderID,
		Amount:       input.Amount,
		ItemID:       input.CourseID,
		ItemName:     input.CourseName,
		CustomerName: input.CustomerName,
		Email:        input.Email,
		Phone:        input.Phone,
	})
	if err != nil {
		return nil, err
	}

	payment := &Payment{
		UserID:    input.UserID,
		CourseID:  input.CourseID,
		OrderID:   orderID,
		SnapToken: transaction.Token,
		Amount:    input.Amount,
		Status:    StatusPending,
	}
	if err := service.store.Create(ctx, payment); err != nil {
		// The gateway already holds the order; an unrecorded charge is worse
		// than a failed checkout, so surface the error.
		return nil, err
	}

	service.log.Info("checkout registered",
		slog.String("order_id", orderID),
		slog.String("user_id", input.UserID),
		slog.Int64("amount", input.Amount))

	return &CheckoutResult{
		OrderID:     orderID,
		SnapToken:   transaction.Token,
		RedirectURL: transaction.RedirectURL,
	}, nil
}

/*
HandleNotification verifies and applies a gateway webhook.

The signature is recomputed from the notification fields and the server key;
a mismatch rejects the notification before any state changes. A notification
for an unknown order is recorded as a new row so no gateway event is lost.
When the status reports settled funds (settlement or capture) and the order
carries a course, the user is enrolled in that course.

Parameters:
  - ctx: context.Context
  - notification: Notification
  - raw: []byte (exact request body, persisted for audit)

Returns:
  - error: apperr.Unauthorized on signature mismatch, or persistence failures
*/
func (service *Service) HandleNotification(ctx context.Context, notification Notification, raw []byte) error {
	expected := service.gateway.NotificationSignature(
		notification.OrderID, notification.StatusCode, notification.GrossAmount)
	if !hmac.Equal([]byte(expected), []byte(notification.SignatureKey)) {
		return apperr.Unauthorized("Invalid notification signature")
	}

	amount, err := parseGrossAmount(notification.GrossAmount)
	if err != nil {
		return apperr.ValidationError("Malformed gross amount", apperr.FieldError{
			Field:   "gross_amount",
			Message: "must be a decimal number",
		})
	}

	status := notification.TransactionStatus
	if raw == nil {
		raw, _ = json.Marshal(notification)
	}

	err = service.store.ApplyNotification(ctx, notification.OrderID, status, amount, raw)
	if ae := apperr.As(err); ae != nil && ae.HTTPStatus == http.StatusNotFound {
		// Order created outside this service instance, or the checkout row
		// was lost. Keep the gateway's record anyway.
		return service.store.Create(ctx, &Payment{
			UserID:          "unknown",
			OrderID:         notification.OrderID,
			Amount:          amount,
			Status:          status,
			GatewayResponse: raw,
		})
	}
	if err != nil {
		return err
	}

	service.log.Info("payment notification applied",
		slog.String("order_id", notification.OrderID),
		slog.String("status", status))

	if settled(status) {
		service.enroll(ctx, notification.OrderID)
	}

	return nil
}

// enroll grants course access for a settled order. The payment update has
// already been committed, so a failed grant is logged rather than bubbled up;
// the gateway retries its notification and the insert is idempotent.
func (service *Service) enroll(ctx context.Context, orderID string) {
	payment, err := service.store.FindByOrderID(ctx, orderID)
	if err != nil {
		service.log.Error("enrollment lookup failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()))
		return
	}
	if payment.CourseID == "" || payment.UserID == "" || payment.UserID == "unknown" {
		return
	}

	err = service.store.CreateEnrollment(ctx, &Enrollment{
		UserID:   payment.UserID,
		CourseID: payment.CourseID,
		OrderID:  payment.OrderID,
	})
	if err != nil {
		service.log.Error("enrollment create failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()))
		return
	}

	service.log.Info("enrollment granted",
		slog.String("user_id", payment.UserID),
		slog.String("course_id", payment.CourseID),
		slog.String("order_id", orderID))
}

/*
History returns a page of the user's payments, newest first.

Parameters:
  - ctx: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []Payment: Page of payment records
  - pagination.Meta: Page metadata
  - error: Retrieval failures
*/
func (service *Service) History(ctx context.Context, userID string, params pagination.Params) ([]Payment, pagination.Meta, error) {
	records, total, err := service.store.ListByUser(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return records, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// newOrderID builds a merchant order ID unique enough for the gateway:
// millisecond timestamp plus a random suffix.
func (service *Service) newOrderID() string {
	suffix, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		suffix = big.NewInt(service.now().UnixNano() % 1_000_000)
	}
	return fmt.Sprintf("order_%d_%06d", service.now().UnixMilli(), suffix.Int64())
}

// parseGrossAmount converts the gateway's decimal string to whole currency
// units. Snap reports integer amounts with a ".00" fraction.
func parseGrossAmount(gross string) (int64, error) {
	value, err := strconv.ParseFloat(gross, 64)
	if err != nil {
		return 0, err
	}
	return int64(value), nil
}
