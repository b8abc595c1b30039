package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

type mockFeeRepo struct {
	fees     map[string]*models.Fee
	payments map[string][]models.PaymentEntry
	stats    *models.FeeStats
	overdue  []models.Fee
	err      error

	// beforeAppend lets a test land a competing write between the
	// service's read and the append, as a concurrent request would.
	beforeAppend func()
}

func newMockFeeRepo() *mockFeeRepo {
	return &mockFeeRepo{
		fees:     make(map[string]*models.Fee),
		payments: make(map[string][]models.PaymentEntry),
	}
}

func (m *mockFeeRepo) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Fee, 0, len(m.fees))
	for _, f := range m.fees {
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (m *mockFeeRepo) Get(ctx context.Context, id string) (*models.Fee, error) {
	if f, ok := m.fees[id]; ok {
		clone := *f
		clone.Payments = append([]models.PaymentEntry(nil), m.payments[id]...)
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) Create(ctx context.Context, fee *models.Fee) error {
	m.fees[fee.ID] = fee
	return nil
}

func (m *mockFeeRepo) Update(ctx context.Context, fee *models.Fee) error {
	if _, ok := m.fees[fee.ID]; !ok {
		return sql.ErrNoRows
	}
	m.fees[fee.ID] = fee
	return nil
}

func (m *mockFeeRepo) AppendPayment(ctx context.Context, feeID string, entry *models.PaymentEntry) (*models.Fee, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.beforeAppend != nil {
		m.beforeAppend()
	}
	fee, ok := m.fees[feeID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if fee.PaidAmount+entry.Amount > fee.Amount {
		return nil, models.ErrBalanceExceeded
	}
	fee.PaidAmount += entry.Amount
	fee.RemainingAmount = fee.Amount - fee.PaidAmount
	fee.Status = models.StatusFor(fee.Amount, fee.PaidAmount)
	m.payments[feeID] = append(m.payments[feeID], *entry)
	clone := *fee
	return &clone, nil
}

func (m *mockFeeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.fees[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.fees, id)
	return nil
}

func (m *mockFeeRepo) Stats(ctx context.Context) (*models.FeeStats, error) {
	return m.stats, m.err
}

func (m *mockFeeRepo) Overdue(ctx context.Context, asOf time.Time) ([]models.Fee, error) {
	return m.overdue, m.err
}

func seedFee(repo *mockFeeRepo, id string, amount, paid float64) {
	repo.fees[id] = &models.Fee{
		ID:              id,
		StudentID:       "s1",
		StudentName:     "Rahul Kumar",
		StudentClass:    "10A",
		FeeType:         "Tuition",
		Amount:          amount,
		PaidAmount:      paid,
		RemainingAmount: amount - paid,
		Status:          models.StatusFor(amount, paid),
		DueDate:         time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestFeeServiceCreate(t *testing.T) {
	repo := newMockFeeRepo()
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	fee, err := svc.Create(context.Background(), dto.CreateFeeRequest{
		StudentID:    "s1",
		StudentName:  "Rahul Kumar",
		StudentClass: "10A",
		FeeType:      "Tuition",
		Amount:       5000,
		DueDate:      "2026-01-20",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fee.ID)
	assert.Equal(t, models.FeeStatusPending, fee.Status)
	assert.Equal(t, float64(5000), fee.RemainingAmount)
	assert.Zero(t, fee.PaidAmount)
}

func TestFeeServiceRecordPaymentPartialThenPaid(t *testing.T) {
	repo := newMockFeeRepo()
	seedFee(repo, "fee1", 5000, 0)
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	fee, err := svc.RecordPayment(context.Background(), "fee1", dto.RecordPaymentRequest{
		Amount:        2000,
		PaymentMethod: "UPI",
		TransactionID: "txn_1",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(2000), fee.PaidAmount)
	assert.Equal(t, float64(3000), fee.RemainingAmount)
	assert.Equal(t, models.FeeStatusPartial, fee.Status)
	require.Len(t, fee.Payments, 1)
	assert.Equal(t, "Parent", fee.Payments[0].PaidBy)

	fee, err = svc.RecordPayment(context.Background(), "fee1", dto.RecordPaymentRequest{
		Amount:        3000,
		PaymentMethod: "UPI",
		TransactionID: "txn_2",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(5000), fee.PaidAmount)
	assert.Zero(t, fee.RemainingAmount)
	assert.Equal(t, models.FeeStatusPaid, fee.Status)
	assert.Len(t, fee.Payments, 2)
}

func TestFeeServiceRecordPaymentRejectsOverpayment(t *testing.T) {
	repo := newMockFeeRepo()
	seedFee(repo, "fee1", 5000, 4000)
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	_, err := svc.RecordPayment(context.Background(), "fee1", dto.RecordPaymentRequest{
		Amount:        2000,
		PaymentMethod: "Cash",
		TransactionID: "txn_1",
	})
	require.Error(t, err)
	assert.Empty(t, repo.payments["fee1"])
	assert.Equal(t, float64(4000), repo.fees["fee1"].PaidAmount)
}

func TestFeeServiceRecordPaymentRejectsRacingOverpayment(t *testing.T) {
	repo := newMockFeeRepo()
	seedFee(repo, "fee1", 5000, 0)
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	// A competing payment lands after the service read the fee but
	// before the append commits; only the repository guard can catch it.
	repo.beforeAppend = func() {
		repo.beforeAppend = nil
		fee := repo.fees["fee1"]
		fee.PaidAmount = 3000
		fee.RemainingAmount = 2000
		fee.Status = models.FeeStatusPartial
	}

	_, err := svc.RecordPayment(context.Background(), "fee1", dto.RecordPaymentRequest{
		Amount:        3000,
		PaymentMethod: "UPI",
		TransactionID: "txn_race",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, float64(3000), repo.fees["fee1"].PaidAmount)
	assert.Empty(t, repo.payments["fee1"])
}

func TestFeeServiceRecordPaymentRequiresTransactionID(t *testing.T) {
	repo := newMockFeeRepo()
	seedFee(repo, "fee1", 5000, 0)
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	_, err := svc.RecordPayment(context.Background(), "fee1", dto.RecordPaymentRequest{
		Amount:        1000,
		PaymentMethod: "Cash",
	})
	require.Error(t, err)
	assert.Empty(t, repo.payments["fee1"])
}

func TestFeeServiceUpdateRecomputesStatus(t *testing.T) {
	repo := newMockFeeRepo()
	seedFee(repo, "fee1", 5000, 2000)
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	amount := float64(2000)
	fee, err := svc.Update(context.Background(), "fee1", dto.UpdateFeeRequest{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPaid, fee.Status)
	assert.Zero(t, fee.RemainingAmount)
}

func TestFeeServiceUpdateRejectsAmountBelowPaid(t *testing.T) {
	repo := newMockFeeRepo()
	seedFee(repo, "fee1", 5000, 2000)
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	amount := float64(1000)
	_, err := svc.Update(context.Background(), "fee1", dto.UpdateFeeRequest{Amount: &amount})
	require.Error(t, err)
}

func TestFeeServiceGetNotFound(t *testing.T) {
	repo := newMockFeeRepo()
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
}

func TestFeeServiceStatsCollectionRate(t *testing.T) {
	repo := newMockFeeRepo()
	repo.stats = &models.FeeStats{TotalFees: 4, PaidFees: 1, PartialFees: 1, PendingFees: 2, TotalAmount: 20000, PaidAmount: 7000, RemainingAmount: 13000}
	svc := NewFeeService(repo, validator.New(), zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 35, stats.CollectionRate)
}
