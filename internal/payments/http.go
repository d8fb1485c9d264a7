// Copyright (c) 2026 Reelgate. All rights reserved.

package payments

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/reelgate/reelgate/internal/platform/request"
	"github.com/reelgate/reelgate/internal/platform/respond"
	"github.com/reelgate/reelgate/internal/platform/validate"
	"github.com/reelgate/reelgate/pkg/pagination"
)

// maxNotificationBytes bounds webhook bodies; gateway payloads are small.
const maxNotificationBytes = 64 << 10

// Handler exposes checkout and payment history over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the payments HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the authenticated payment routes, mounted under
// /api/v1/payments. The gateway webhook is registered separately at the
// server root because the gateway cannot authenticate as a user.
func (handler *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(requireAuth)
	router.Post("/checkout", handler.Checkout)
	router.Get("/", handler.History)
	return router
}

type checkoutRequest struct {
	CustomerName string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"whatsapp"`
	CourseID     string `json:"course_id"`
	CourseName   string `json:"course_name"`
	Amount       int64  `json:"amount"`
}

/*
Checkout handles POST /api/v1/payments/checkout.

Registers an order with the payment gateway on behalf of the authenticated
user and returns the snap token the frontend needs to open the hosted
payment page.

Returns:
  - 201: {order_id, snap_token, redirect_url}
  - 400: Validation failure
  - 401: Missing or invalid session
  - 502: Gateway unavailable
*/
func (handler *Handler) Checkout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body checkoutRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required("name", body.CustomerName).
		Required("email", body.Email).
		Email("email", body.Email).
		Required("course_id", body.CourseID).
		Required("course_name", body.CourseName).
		Positive("amount", body.Amount)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Checkout(request.Context(), CheckoutInput{
		UserID:       userID,
		CustomerName: body.CustomerName,
		Email:        body.Email,
		Phone:        body.Phone,
		CourseID:     body.CourseID,
		CourseName:   body.CourseName,
		Amount:       body.Amount,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
History handles GET /api/v1/payments.

Returns the authenticated user's payments, newest first, with pagination
metadata.

Returns:
  - 200: Paginated list of payments
  - 401: Missing or invalid session
*/
func (handler *Handler) History(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	records, meta, err := handler.service.History(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if records == nil {
		records = []Payment{}
	}

	respond.Paginated(writer, records, meta)
}

/*
Notification handles POST /webhooks/payment.

The gateway posts transaction lifecycle events here. The body is read in
full so the signature-verified payload can be persisted verbatim.

Returns:
  - 200: {status: "received", order_id}
  - 400: Undecodable payload
  - 401: Signature mismatch
*/
func (handler *Handler) Notification(writer http.ResponseWriter, request *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(request.Body, maxNotificationBytes))
	if err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	var notification Notification
	if err := json.Unmarshal(raw, &notification); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.service.HandleNotification(request.Context(), notification, raw); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"status":    "received",
		"order_id":  notification.OrderID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
