// Copyright (c) 2026 Reelgate. All rights reserved.

package payments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelgate/reelgate/internal/platform/apperr"
)

/*
TestSnapClient_CreateTransaction checks the request shape sent to the Snap
API, including Basic credentials derived from the server key.
*/
func TestSnapClient_CreateTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/snap/v1/transactions", r.URL.Path)

		expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("SB-server-key:"))
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			TransactionDetails struct {
				OrderID     string `json:"order_id"`
				GrossAmount int64  `json:"gross_amount"`
			} `json:"transaction_details"`
			ItemDetails []struct {
				Name     string `json:"name"`
				Price    int64  `json:"price"`
				Quantity int    `json:"quantity"`
			} `json:"item_details"`
			CustomerDetails struct {
				FirstName string `json:"first_name"`
				Email     string `json:"email"`
			} `json:"customer_details"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "order_1_000001", payload.TransactionDetails.OrderID)
		assert.Equal(t, int64(350000), payload.TransactionDetails.GrossAmount)
		require.Len(t, payload.ItemDetails, 1)
		assert.Equal(t, 1, payload.ItemDetails[0].Quantity)
		assert.Equal(t, "dina@example.com", payload.CustomerDetails.Email)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"snap-abc","redirect_url":"https://gateway.example.com/pay/snap-abc"}`))
	}))
	defer server.Close()

	client := NewSnapClient(server.URL, "SB-server-key")

	transaction, err := client.CreateTransaction(context.Background(), CheckoutOrder{
		OrderID:      "order_1_000001",
		Amount:       350000,
		ItemID:       "course-1",
		ItemName:     "Cinematography Fundamentals",
		CustomerName: "Dina",
		Email:        "dina@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-abc", transaction.Token)
	assert.Equal(t, "https://gateway.example.com/pay/snap-abc", transaction.RedirectURL)
}

/*
TestSnapClient_CreateTransaction_Failures maps gateway rejections and broken
responses to 502 AppErrors.
*/
func TestSnapClient_CreateTransaction_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"rejected_401", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error_messages":["unauthorized"]}`))
		}},
		{"malformed_body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"empty_token", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token":""}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewSnapClient(server.URL, "SB-server-key")
			_, err := client.CreateTransaction(context.Background(), CheckoutOrder{
				OrderID: "order_1_000001", Amount: 1000,
			})
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusBadGateway, appError.HTTPStatus)
		})
	}
}

/*
TestSnapClient_NotificationSignature pins the signature algorithm to the
gateway's published scheme: sha512(order_id + status_code + gross_amount +
server_key), hex-encoded.
*/
func TestSnapClient_NotificationSignature(t *testing.T) {
	client := NewSnapClient("https://gateway.example.com", "server-key")

	got := client.NotificationSignature("order-1", "200", "350000.00")
	assert.Len(t, got, 128)
	assert.Equal(t, got, client.NotificationSignature("order-1", "200", "350000.00"))

	// Any field change must change the signature.
	assert.NotEqual(t, got, client.NotificationSignature("order-2", "200", "350000.00"))
	assert.NotEqual(t, got, client.NotificationSignature("order-1", "201", "350000.00"))
	assert.NotEqual(t, got, client.NotificationSignature("order-1", "200", "350001.00"))

	other := NewSnapClient("https://gateway.example.com", "other-key")
	assert.NotEqual(t, got, other.NotificationSignature("order-1", "200", "350000.00"))
}
