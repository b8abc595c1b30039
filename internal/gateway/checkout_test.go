package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

func TestCreateSessionSendsAmountAndMetadata(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create-checkout-session", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"sessionId": "cs_test_1",
			"url":       "https://checkout.example/cs_test_1",
		})
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "inr", 5*time.Second)
	resp, err := client.CreateSession(context.Background(), CreateSessionRequest{
		Amount:      2000,
		FeeID:       "fee1",
		StudentName: "Rahul Kumar",
		FeeType:     "Tuition",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", resp.SessionID)
	assert.Equal(t, "https://checkout.example/cs_test_1", resp.URL)

	assert.Equal(t, float64(2000), received["amount"])
	assert.Equal(t, "inr", received["currency"])
	assert.Equal(t, "fee1", received["feeId"])
	assert.Equal(t, "Rahul Kumar", received["studentName"])
	assert.Equal(t, "Tuition", received["feeType"])
}

func TestCreateSessionGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "amount too small"}) //nolint:errcheck
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "inr", 5*time.Second)
	_, err := client.CreateSession(context.Background(), CreateSessionRequest{Amount: 1, FeeID: "fee1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGateway.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestGetSessionDecodesMinorUnitsAndMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout-session/cs_1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"id":             "cs_1",
			"payment_status": "paid",
			"amount_total":   200000,
			"payment_intent": "pi_1",
			"metadata": map[string]string{
				"feeId":       "fee1",
				"studentName": "Rahul Kumar",
				"feeType":     "Tuition",
			},
		})
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "inr", 5*time.Second)
	session, err := client.GetSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPaid, session.PaymentStatus)
	assert.Equal(t, int64(200000), session.AmountTotal)
	assert.Equal(t, "pi_1", session.PaymentIntent)
	assert.Equal(t, "fee1", session.Metadata["feeId"])
}

func TestGetSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewCheckoutClient(server.URL, "inr", 5*time.Second)
	_, err := client.GetSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGateway.Code, appErrors.FromError(err).Code)
}
