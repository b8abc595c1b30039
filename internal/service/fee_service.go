package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

type feeRepository interface {
	List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int, error)
	Get(ctx context.Context, id string) (*models.Fee, error)
	Create(ctx context.Context, fee *models.Fee) error
	Update(ctx context.Context, fee *models.Fee) error
	AppendPayment(ctx context.Context, feeID string, entry *models.PaymentEntry) (*models.Fee, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.FeeStats, error)
	Overdue(ctx context.Context, asOf time.Time) ([]models.Fee, error)
}

// FeeService owns the fee accounting rules: balances move only by
// appending payment entries, and paid never exceeds the fee amount.
type FeeService struct {
	repo      feeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService.
func NewFeeService(repo feeRepository, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{repo: repo, validator: validate, logger: logger}
}

// List returns fees matching the filter with pagination metadata.
func (s *FeeService) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, *models.Pagination, error) {
	fees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 || size > 100 {
		size = 20
	}
	return fees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one fee with its payment history.
func (s *FeeService) Get(ctx context.Context, id string) (*models.Fee, error) {
	fee, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get fee")
	}
	return fee, nil
}

// Create registers a new fee obligation in Pending state.
func (s *FeeService) Create(ctx context.Context, req dto.CreateFeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "due_date must be formatted YYYY-MM-DD")
	}

	fee := &models.Fee{
		ID:              uuid.NewString(),
		StudentID:       req.StudentID,
		StudentName:     req.StudentName,
		StudentClass:    req.StudentClass,
		FeeType:         req.FeeType,
		Amount:          req.Amount,
		PaidAmount:      0,
		RemainingAmount: req.Amount,
		Status:          models.FeeStatusPending,
		DueDate:         dueDate,
		Payments:        []models.PaymentEntry{},
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee")
	}
	s.logger.Info("fee created", zap.String("fee_id", fee.ID), zap.String("student_id", fee.StudentID))
	return fee, nil
}

// Update applies mutable attributes. A changed amount recomputes the
// remaining balance and status against what has already been paid.
func (s *FeeService) Update(ctx context.Context, id string, req dto.UpdateFeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}

	fee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FeeType != nil {
		fee.FeeType = *req.FeeType
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "due_date must be formatted YYYY-MM-DD")
		}
		fee.DueDate = dueDate
	}
	if req.Amount != nil {
		if *req.Amount < fee.PaidAmount {
			return nil, appErrors.Clone(appErrors.ErrValidation, "amount cannot be lowered below the paid amount")
		}
		fee.Amount = *req.Amount
		fee.RemainingAmount = fee.Amount - fee.PaidAmount
		fee.Status = models.StatusFor(fee.Amount, fee.PaidAmount)
	}

	if err := s.repo.Update(ctx, fee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee")
	}
	return fee, nil
}

// Delete removes a fee record.
func (s *FeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee")
	}
	return nil
}

// RecordPayment appends a manual payment entry. The amount must sit in
// (0, remaining] and the transaction reference must be present; nothing
// is mutated when validation fails. The remaining-balance check here is
// a fast path for a friendly message; the repository enforces it
// atomically, so a racing payment cannot slip past the guard.
func (s *FeeService) RecordPayment(ctx context.Context, feeID string, req dto.RecordPaymentRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	fee, err := s.Get(ctx, feeID)
	if err != nil {
		return nil, err
	}

	if req.Amount > fee.RemainingAmount {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("amount cannot exceed the remaining balance of %.2f", fee.RemainingAmount))
	}

	paidBy := req.PaidBy
	if paidBy == "" {
		paidBy = "Parent"
	}
	entry := &models.PaymentEntry{
		ID:            uuid.NewString(),
		FeeID:         fee.ID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		PaidBy:        paidBy,
		PaymentDate:   time.Now().UTC(),
	}

	updated, err := s.repo.AppendPayment(ctx, fee.ID, entry)
	if err != nil {
		if errors.Is(err, models.ErrBalanceExceeded) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "amount cannot exceed the remaining balance")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	updated.Payments = append(append([]models.PaymentEntry(nil), fee.Payments...), *entry)
	s.logger.Info("payment recorded",
		zap.String("fee_id", updated.ID),
		zap.Float64("amount", req.Amount),
		zap.String("method", req.PaymentMethod),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// Stats aggregates collection figures and the overall collection rate.
func (s *FeeService) Stats(ctx context.Context) (*models.FeeStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate fee stats")
	}
	if stats.TotalAmount > 0 {
		stats.CollectionRate = int(stats.PaidAmount/stats.TotalAmount*100 + 0.5)
	}
	return stats, nil
}

// Overdue lists unpaid fees past their due date as of today.
func (s *FeeService) Overdue(ctx context.Context) ([]models.Fee, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	fees, err := s.repo.Overdue(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overdue fees")
	}
	return fees, nil
}
