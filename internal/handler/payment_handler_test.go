package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/gateway"
	"github.com/imrann-dev/school-erp-api/internal/models"
	"github.com/imrann-dev/school-erp-api/internal/service"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

type fakeCheckoutGateway struct {
	session *models.CheckoutSession
}

func (f *fakeCheckoutGateway) CreateSession(context.Context, gateway.CreateSessionRequest) (*gateway.CreateSessionResponse, error) {
	return &gateway.CreateSessionResponse{SessionID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
}

func (f *fakeCheckoutGateway) GetSession(context.Context, string) (*models.CheckoutSession, error) {
	if f.session == nil {
		return nil, appErrors.Clone(appErrors.ErrGateway, "session not found")
	}
	return f.session, nil
}

type fakePaymentState struct {
	pending   map[string]*models.PendingPayment
	claims    map[string]bool
	processed map[string]bool
}

func newFakePaymentState() *fakePaymentState {
	return &fakePaymentState{
		pending:   make(map[string]*models.PendingPayment),
		claims:    make(map[string]bool),
		processed: make(map[string]bool),
	}
}

func (f *fakePaymentState) SavePending(_ context.Context, pending *models.PendingPayment, _ time.Duration) error {
	f.pending[pending.SessionID] = pending
	return nil
}

func (f *fakePaymentState) GetPending(_ context.Context, sessionID string) (*models.PendingPayment, error) {
	return f.pending[sessionID], nil
}

func (f *fakePaymentState) DeletePending(_ context.Context, sessionID string) error {
	delete(f.pending, sessionID)
	return nil
}

func (f *fakePaymentState) ClaimSession(_ context.Context, sessionID string, _ time.Duration) (bool, error) {
	if f.claims[sessionID] {
		return false, nil
	}
	f.claims[sessionID] = true
	return true, nil
}

func (f *fakePaymentState) ReleaseClaim(_ context.Context, sessionID string) error {
	delete(f.claims, sessionID)
	return nil
}

func (f *fakePaymentState) MarkProcessed(_ context.Context, sessionID string) error {
	f.processed[sessionID] = true
	return nil
}

func (f *fakePaymentState) IsProcessed(_ context.Context, sessionID string) (bool, error) {
	return f.processed[sessionID], nil
}

type fakeFeeUpdater struct {
	fee      *models.Fee
	recorded []dto.RecordPaymentRequest
}

func (f *fakeFeeUpdater) Get(context.Context, string) (*models.Fee, error) {
	return f.fee, nil
}

func (f *fakeFeeUpdater) RecordPayment(_ context.Context, _ string, req dto.RecordPaymentRequest) (*models.Fee, error) {
	f.recorded = append(f.recorded, req)
	return f.fee, nil
}

func newPaymentHandler(gw *fakeCheckoutGateway, state *fakePaymentState, fees *fakeFeeUpdater) *PaymentHandler {
	svc := service.NewPaymentService(gw, state, fees, nil, validator.New(), zap.NewNop(), service.PaymentServiceConfig{
		MinAmount: 50,
	})
	return NewPaymentHandler(svc)
}

func TestPaymentHandlerInitiateCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	state := newFakePaymentState()
	handler := newPaymentHandler(&fakeCheckoutGateway{}, state, &fakeFeeUpdater{
		fee: &models.Fee{ID: "fee1", StudentName: "Rahul Kumar", FeeType: "Tuition", Amount: 5000, RemainingAmount: 5000},
	})

	body, _ := json.Marshal(dto.InitiateCheckoutRequest{FeeID: "fee1", Amount: 2000})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/payments/checkout", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.InitiateCheckout(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data dto.InitiateCheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "cs_1", envelope.Data.SessionID)
	assert.NotNil(t, state.pending["cs_1"])
}

func TestPaymentHandlerReturnSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	state := newFakePaymentState()
	state.pending["cs_1"] = &models.PendingPayment{FeeID: "fee1", Amount: 2000, SessionID: "cs_1"}
	fees := &fakeFeeUpdater{fee: &models.Fee{ID: "fee1", Amount: 5000, RemainingAmount: 5000}}
	handler := newPaymentHandler(&fakeCheckoutGateway{
		session: &models.CheckoutSession{ID: "cs_1", PaymentStatus: models.SessionStatusPaid, AmountTotal: 200000},
	}, state, fees)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/payments/return?payment=success&session_id=cs_1", nil)

	handler.Return(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fees.recorded, 1)
	assert.Equal(t, models.PaymentMethodCheckout, fees.recorded[0].PaymentMethod)
}

func TestPaymentHandlerReturnCancelled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	state := newFakePaymentState()
	state.pending["cs_1"] = &models.PendingPayment{FeeID: "fee1", Amount: 2000, SessionID: "cs_1"}
	fees := &fakeFeeUpdater{}
	handler := newPaymentHandler(&fakeCheckoutGateway{}, state, fees)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/payments/return?payment=cancelled&session_id=cs_1", nil)

	handler.Return(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, state.pending["cs_1"])
	assert.Empty(t, fees.recorded)
}

func TestPaymentHandlerReturnRejectsUnknownOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPaymentHandler(&fakeCheckoutGateway{}, newFakePaymentState(), &fakeFeeUpdater{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/payments/return?payment=maybe", nil)

	handler.Return(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentHandlerReturnUnpaidSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	state := newFakePaymentState()
	state.pending["cs_1"] = &models.PendingPayment{FeeID: "fee1", Amount: 2000, SessionID: "cs_1"}
	fees := &fakeFeeUpdater{}
	handler := newPaymentHandler(&fakeCheckoutGateway{
		session: &models.CheckoutSession{ID: "cs_1", PaymentStatus: models.SessionStatusUnpaid},
	}, state, fees)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/payments/return?payment=success&session_id=cs_1", nil)

	handler.Return(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, fees.recorded)
}
