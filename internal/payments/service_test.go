// Copyright (c) 2026 Reelgate. All rights reserved.

package payments

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelgate/reelgate/internal/platform/apperr"
	"github.com/reelgate/reelgate/pkg/pagination"
)

// memoryStore keeps payments in a map keyed by order ID and enrollments
// keyed by user and course.
type memoryStore struct {
	payments    map[string]*Payment
	enrollments map[string]Enrollment
	createErr   error
	enrollErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		payments:    map[string]*Payment{},
		enrollments: map[string]Enrollment{},
	}
}

func (store *memoryStore) Create(_ context.Context, payment *Payment) error {
	if store.createErr != nil {
		return store.createErr
	}
	payment.ID = int64(len(store.payments) + 1)
	store.payments[payment.OrderID] = payment
	return nil
}

func (store *memoryStore) FindByOrderID(_ context.Context, orderID string) (*Payment, error) {
	payment, found := store.payments[orderID]
	if !found {
		return nil, apperr.NotFound("Payment")
	}
	return payment, nil
}

func (store *memoryStore) ApplyNotification(_ context.Context, orderID, status string, amount int64, raw []byte) error {
	payment, found := store.payments[orderID]
	if !found {
		return apperr.NotFound("Payment")
	}
	payment.Status = status
	payment.Amount = amount
	payment.GatewayResponse = raw
	return nil
}

func (store *memoryStore) CreateEnrollment(_ context.Context, enrollment *Enrollment) error {
	if store.enrollErr != nil {
		return store.enrollErr
	}
	key := enrollment.UserID + "/" + enrollment.CourseID
	if _, exists := store.enrollments[key]; exists {
		return nil
	}
	store.enrollments[key] = *enrollment
	return nil
}

func (store *memoryStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]Payment, int, error) {
	var matched []Payment
	for _, payment := range store.payments {
		if payment.UserID == userID {
			matched = append(matched, *payment)
		}
	}
	if offset >= len(matched) {
		return nil, len(matched), nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], len(matched), nil
}

// stubGateway returns canned transactions and signs like the real client.
type stubGateway struct {
	serverKey string
	orders    []CheckoutOrder
	failWith  error
}

func (gateway *stubGateway) CreateTransaction(_ context.Context, order CheckoutOrder) (*SnapTransaction, error) {
	if gateway.failWith != nil {
		return nil, gateway.failWith
	}
	gateway.orders = append(gateway.orders, order)
	return &SnapTransaction{
		Token:       "snap-token-" + order.OrderID,
		RedirectURL: "https://gateway.example.com/pay/" + order.OrderID,
	}, nil
}

func (gateway *stubGateway) NotificationSignature(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + gateway.serverKey))
	return hex.EncodeToString(sum[:])
}

func newTestService() (*Service, *memoryStore, *stubGateway) {
	store := newMemoryStore()
	gateway := &stubGateway{serverKey: "server-key"}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, gateway, log), store, gateway
}

/*
TestService_Checkout registers a gateway transaction and records the payment
as pending.
*/
func TestService_Checkout(t *testing.T) {
	service, store, gateway := newTestService()

	result, err := service.Checkout(context.Background(), CheckoutInput{
		UserID:       "user-42",
		CustomerName: "Dina",
		Email:        "dina@example.com",
		CourseID:     "course-1",
		CourseName:   "Cinematography Fundamentals",
		Amount:       350000,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.OrderID)
	assert.Equal(t, "snap-token-"+result.OrderID, result.SnapToken)
	assert.NotEmpty(t, result.RedirectURL)

	require.Len(t, gateway.orders, 1)
	assert.Equal(t, int64(350000), gateway.orders[0].Amount)

	recorded, err := store.FindByOrderID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, recorded.Status)
	assert.Equal(t, "user-42", recorded.UserID)
}

/*
TestService_Checkout_UniqueOrderIDs guards against order ID collisions
across rapid checkouts.
*/
func TestService_Checkout_UniqueOrderIDs(t *testing.T) {
	service, _, _ := newTestService()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		result, err := service.Checkout(context.Background(), CheckoutInput{
			UserID: "user-42", CustomerName: "Dina", Email: "d@example.com",
			CourseID: "course-1", CourseName: "Course", Amount: 1000,
		})
		require.NoError(t, err)
		assert.False(t, seen[result.OrderID], "duplicate order ID %s", result.OrderID)
		seen[result.OrderID] = true
	}
}

/*
TestService_Checkout_Failures propagates gateway and store errors without
leaving half-recorded state.
*/
func TestService_Checkout_Failures(t *testing.T) {
	t.Run("gateway_down", func(t *testing.T) {
		service, store, gateway := newTestService()
		gateway.failWith = apperr.Upstream("Payment gateway", errors.New("dial timeout"))

		_, err := service.Checkout(context.Background(), CheckoutInput{
			UserID: "user-42", Amount: 1000, CourseID: "course-1",
		})
		require.Error(t, err)
		assert.Empty(t, store.payments)
	})

	t.Run("store_failure_surfaces", func(t *testing.T) {
		service, store, _ := newTestService()
		store.createErr = errors.New("connection reset")

		_, err := service.Checkout(context.Background(), CheckoutInput{
			UserID: "user-42", Amount: 1000, CourseID: "course-1",
		})
		require.Error(t, err)
	})
}

/*
TestService_HandleNotification verifies the signature gate and status
transitions.
*/
func TestService_HandleNotification(t *testing.T) {
	newNotification := func(gateway *stubGateway, orderID string) Notification {
		notification := Notification{
			OrderID:           orderID,
			TransactionStatus: StatusSettlement,
			StatusCode:        "200",
			GrossAmount:       "350000.00",
		}
		notification.SignatureKey = gateway.NotificationSignature(
			notification.OrderID, notification.StatusCode, notification.GrossAmount)
		return notification
	}

	t.Run("valid_signature_applies_status", func(t *testing.T) {
		service, store, gateway := newTestService()

		result, err := service.Checkout(context.Background(), CheckoutInput{
			UserID: "user-42", Amount: 350000, CourseID: "course-1",
		})
		require.NoError(t, err)

		notification := newNotification(gateway, result.OrderID)
		require.NoError(t, service.HandleNotification(context.Background(), notification, []byte(`{"raw":true}`)))

		updated, err := store.FindByOrderID(context.Background(), result.OrderID)
		require.NoError(t, err)
		assert.Equal(t, StatusSettlement, updated.Status)
		assert.Equal(t, int64(350000), updated.Amount)
		assert.Equal(t, []byte(`{"raw":true}`), updated.GatewayResponse)
	})

	t.Run("forged_signature_rejected", func(t *testing.T) {
		service, store, gateway := newTestService()

		result, err := service.Checkout(context.Background(), CheckoutInput{
			UserID: "user-42", Amount: 350000, CourseID: "course-1",
		})
		require.NoError(t, err)

		notification := newNotification(gateway, result.OrderID)
		notification.SignatureKey = "forged"

		err = service.HandleNotification(context.Background(), notification, nil)
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)

		untouched, err := store.FindByOrderID(context.Background(), result.OrderID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, untouched.Status)
	})

	t.Run("tampered_amount_rejected", func(t *testing.T) {
		service, _, gateway := newTestService()

		notification := newNotification(gateway, "order_1_000001")
		notification.GrossAmount = "1.00" // signature no longer matches

		err := service.HandleNotification(context.Background(), notification, nil)
		require.Error(t, err)
	})

	t.Run("unknown_order_recorded", func(t *testing.T) {
		service, store, gateway := newTestService()

		notification := newNotification(gateway, "order_unseen_000001")
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))

		recorded, err := store.FindByOrderID(context.Background(), "order_unseen_000001")
		require.NoError(t, err)
		assert.Equal(t, StatusSettlement, recorded.Status)
	})
}

/*
TestService_HandleNotification_Enrollment covers the course grant that a
settled payment produces.
*/
func TestService_HandleNotification_Enrollment(t *testing.T) {
	signedNotification := func(gateway *stubGateway, orderID, status string) Notification {
		notification := Notification{
			OrderID:           orderID,
			TransactionStatus: status,
			StatusCode:        "200",
			GrossAmount:       "350000.00",
		}
		notification.SignatureKey = gateway.NotificationSignature(
			notification.OrderID, notification.StatusCode, notification.GrossAmount)
		return notification
	}

	checkout := func(t *testing.T, service *Service, courseID string) string {
		t.Helper()
		result, err := service.Checkout(context.Background(), CheckoutInput{
			UserID: "user-42", Amount: 350000, CourseID: courseID,
		})
		require.NoError(t, err)
		return result.OrderID
	}

	t.Run("settlement_grants_access", func(t *testing.T) {
		service, store, gateway := newTestService()
		orderID := checkout(t, service, "course-1")

		notification := signedNotification(gateway, orderID, StatusSettlement)
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))

		require.Len(t, store.enrollments, 1)
		granted := store.enrollments["user-42/course-1"]
		assert.Equal(t, "user-42", granted.UserID)
		assert.Equal(t, "course-1", granted.CourseID)
		assert.Equal(t, orderID, granted.OrderID)
	})

	t.Run("capture_grants_access", func(t *testing.T) {
		service, store, gateway := newTestService()
		orderID := checkout(t, service, "course-1")

		notification := signedNotification(gateway, orderID, StatusCapture)
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))
		assert.Len(t, store.enrollments, 1)
	})

	t.Run("deny_grants_nothing", func(t *testing.T) {
		service, store, gateway := newTestService()
		orderID := checkout(t, service, "course-1")

		for _, status := range []string{StatusDeny, StatusCancel, StatusExpire, StatusPending} {
			notification := signedNotification(gateway, orderID, status)
			require.NoError(t, service.HandleNotification(context.Background(), notification, nil))
		}
		assert.Empty(t, store.enrollments)
	})

	t.Run("repeated_settlement_is_idempotent", func(t *testing.T) {
		service, store, gateway := newTestService()
		orderID := checkout(t, service, "course-1")

		notification := signedNotification(gateway, orderID, StatusSettlement)
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))
		assert.Len(t, store.enrollments, 1)
	})

	t.Run("orders_without_course_grant_nothing", func(t *testing.T) {
		service, store, gateway := newTestService()
		orderID := checkout(t, service, "")

		notification := signedNotification(gateway, orderID, StatusSettlement)
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))
		assert.Empty(t, store.enrollments)
	})

	t.Run("unknown_order_grants_nothing", func(t *testing.T) {
		service, store, gateway := newTestService()

		notification := signedNotification(gateway, "order_unseen_000002", StatusSettlement)
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))
		assert.Empty(t, store.enrollments)
	})

	t.Run("grant_failure_keeps_payment_applied", func(t *testing.T) {
		service, store, gateway := newTestService()
		orderID := checkout(t, service, "course-1")
		store.enrollErr = errors.New("connection reset")

		notification := signedNotification(gateway, orderID, StatusSettlement)
		require.NoError(t, service.HandleNotification(context.Background(), notification, nil))

		updated, err := store.FindByOrderID(context.Background(), orderID)
		require.NoError(t, err)
		assert.Equal(t, StatusSettlement, updated.Status)
		assert.Empty(t, store.enrollments)
	})
}

/*
TestService_History pages through a user's payments.
*/
func TestService_History(t *testing.T) {
	service, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		_, err := service.Checkout(context.Background(), CheckoutInput{
			UserID: "user-42", Amount: 1000, CourseID: "course-1",
		})
		require.NoError(t, err)
	}
	_, err := service.Checkout(context.Background(), CheckoutInput{
		UserID: "someone-else", Amount: 1000, CourseID: "course-1",
	})
	require.NoError(t, err)

	records, meta, err := service.History(context.Background(), "user-42", pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}
