// Copyright (c) 2026 Reelgate. All rights reserved.

package payments

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reelgate/reelgate/internal/platform/apperr"
)

// Gateway is the hosted-checkout provider contract.
type Gateway interface {
	// CreateTransaction registers an order and returns the snap token that
	// opens the hosted payment page.
	CreateTransaction(ctx context.Context, order CheckoutOrder) (*SnapTransaction, error)

	// NotificationSignature computes the expected signature for a webhook
	// notification of the given order.
	NotificationSignature(orderID, statusCode, grossAmount string) string
}

// CheckoutOrder carries everything the gateway needs to register a charge.
type CheckoutOrder struct {
	OrderID      string
	Amount       int64
	ItemID       string
	ItemName     string
	CustomerName string
	Email        string
	Phone        string
}

// SnapTransaction is the gateway's answer to a transaction registration.
type SnapTransaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// SnapClient talks to a Midtrans Snap-compatible gateway over HTTPS.
//
// Authentication is HTTP Basic with the server key as username and an empty
// password. Webhook notifications carry a SHA-512 signature over
// order_id + status_code + gross_amount + server key.
type SnapClient struct {
	baseURL   string
	serverKey string
	client    *http.Client
}

// NewSnapClient creates a gateway client for the given environment base URL.
func NewSnapClient(baseURL, serverKey string) *SnapClient {
	return &SnapClient{
		baseURL:   baseURL,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

/*
CreateTransaction registers an order with the Snap API.

Parameters:
  - ctx: context.Context
  - order: CheckoutOrder

Returns:
  - *SnapTransaction: Snap token and hosted redirect URL
  - error: apperr.Upstream on transport, status, or decode failures
*/
func (snap *SnapClient) CreateTransaction(ctx context.Context, order CheckoutOrder) (*SnapTransaction, error) {
	payload := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     order.OrderID,
			"gross_amount": order.Amount,
		},
		"item_details": []map[string]any{
			{
				"id":       order.ItemID,
				"price":    order.Amount,
				"quantity": 1,
				"name":     order.ItemName,
			},
		},
		"customer_details": map[string]any{
			"first_name": order.CustomerName,
			"email":      order.Email,
			"phone":      order.Phone,
		},
		"credit_card": map[string]any{
			"secure": true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("snap_marshal_failed: %w", err)
	}

	endpoint := snap.baseURL + "/snap/v1/transactions"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("snap_request_build_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", snap.basicAuth())

	response, err := snap.client.Do(request)
	if err != nil {
		return nil, apperr.Upstream("Payment gateway", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 2048))
		return nil, apperr.Upstream("Payment gateway",
			fmt.Errorf("snap_transaction_rejected: status=%d body=%s", response.StatusCode, detail))
	}

	transaction := &SnapTransaction{}
	if err := json.NewDecoder(response.Body).Decode(transaction); err != nil {
		return nil, apperr.Upstream("Payment gateway", fmt.Errorf("snap_decode_failed: %w", err))
	}
	if transaction.Token == "" {
		return nil, apperr.Upstream("Payment gateway", fmt.Errorf("snap_empty_token"))
	}

	return transaction, nil
}

// NotificationSignature computes hex(sha512(orderID + statusCode +
// grossAmount + serverKey)), the signature scheme Snap uses for webhooks.
func (snap *SnapClient) NotificationSignature(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + snap.serverKey))
	return hex.EncodeToString(sum[:])
}

func (snap *SnapClient) basicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(snap.serverKey+":"))
}
