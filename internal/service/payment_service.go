package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/gateway"
	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
	"github.com/imrann-dev/school-erp-api/pkg/jobs"
)

type checkoutGateway interface {
	CreateSession(ctx context.Context, req gateway.CreateSessionRequest) (*gateway.CreateSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}

type paymentStateRepository interface {
	SavePending(ctx context.Context, pending *models.PendingPayment, ttl time.Duration) error
	GetPending(ctx context.Context, sessionID string) (*models.PendingPayment, error)
	DeletePending(ctx context.Context, sessionID string) error
	ClaimSession(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseClaim(ctx context.Context, sessionID string) error
	MarkProcessed(ctx context.Context, sessionID string) error
	IsProcessed(ctx context.Context, sessionID string) (bool, error)
}

type feeUpdater interface {
	Get(ctx context.Context, id string) (*models.Fee, error)
	RecordPayment(ctx context.Context, feeID string, req dto.RecordPaymentRequest) (*models.Fee, error)
}

// PaymentServiceConfig tunes the reconciliation flow.
type PaymentServiceConfig struct {
	MinAmount     float64
	PendingTTL    time.Duration
	ClaimTTL      time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// PaymentService coordinates a hosted checkout with the redirect back
// into the app, applying exactly one balance update per paid session.
// Idempotency is durable: a processed-session record plus an atomic
// per-session claim cover duplicate redirect delivery across reloads
// and concurrent tabs, not just re-renders within one page load.
type PaymentService struct {
	gateway   checkoutGateway
	state     paymentStateRepository
	fees      feeUpdater
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PaymentServiceConfig

	retryQueue *jobs.Queue
}

// NewPaymentService constructs a PaymentService. Call StartRetryQueue
// before serving traffic and StopRetryQueue on shutdown.
func NewPaymentService(gw checkoutGateway, state paymentStateRepository, fees feeUpdater, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg PaymentServiceConfig) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 24 * time.Hour
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 2 * time.Minute
	}

	s := &PaymentService{
		gateway:   gw,
		state:     state,
		fees:      fees,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
	s.retryQueue = jobs.NewQueue("payment-reconcile", s.handleRetryJob, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: cfg.RetryAttempts,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// StartRetryQueue begins processing queued reconciliation retries.
func (s *PaymentService) StartRetryQueue(ctx context.Context) {
	s.retryQueue.Start(ctx)
}

// StopRetryQueue drains the retry workers.
func (s *PaymentService) StopRetryQueue() {
	s.retryQueue.Stop()
}

// InitiateCheckout validates the request against the fee's remaining
// balance, opens a hosted checkout session and records the pending
// marker. After the caller redirects the payer there is no rollback;
// an abandoned checkout simply lets the marker expire.
func (s *PaymentService) InitiateCheckout(ctx context.Context, req dto.InitiateCheckoutRequest) (*dto.InitiateCheckoutResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}

	fee, err := s.fees.Get(ctx, req.FeeID)
	if err != nil {
		return nil, err
	}
	if req.Amount > fee.RemainingAmount {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("amount cannot exceed the remaining balance of %.2f", fee.RemainingAmount))
	}
	if s.cfg.MinAmount > 0 && req.Amount < s.cfg.MinAmount {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("minimum checkout amount is %.2f", s.cfg.MinAmount))
	}

	session, err := s.gateway.CreateSession(ctx, gateway.CreateSessionRequest{
		Amount:      req.Amount,
		FeeID:       fee.ID,
		StudentName: fee.StudentName,
		FeeType:     fee.FeeType,
	})
	if err != nil {
		return nil, err
	}

	pending := &models.PendingPayment{
		FeeID:     fee.ID,
		Amount:    req.Amount,
		SessionID: session.SessionID,
		PaidBy:    req.PaidBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.state.SavePending(ctx, pending, s.cfg.PendingTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to track pending payment")
	}

	s.logger.Info("checkout initiated",
		zap.String("fee_id", fee.ID),
		zap.String("session_id", session.SessionID),
		zap.Float64("amount", req.Amount))
	if s.metrics != nil {
		s.metrics.RecordCheckoutInitiated()
	}

	return &dto.InitiateCheckoutResponse{SessionID: session.SessionID, CheckoutURL: session.URL}, nil
}

// CompleteFromRedirect finishes a checkout after the gateway redirected
// the payer back with payment=success. The claim is taken before any
// network I/O; a session that was already applied is a no-op. A failed
// fee update schedules retries on the queue, which then owns the
// backoff and the attempt budget.
func (s *PaymentService) CompleteFromRedirect(ctx context.Context, sessionID string) (*dto.ReconciliationResult, error) {
	return s.completeSession(ctx, sessionID, true)
}

func (s *PaymentService) completeSession(ctx context.Context, sessionID string, scheduleRetry bool) (*dto.ReconciliationResult, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session_id is required")
	}

	processed, err := s.state.IsProcessed(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session state")
	}
	if processed {
		return &dto.ReconciliationResult{
			SessionID:        sessionID,
			AlreadyProcessed: true,
			Message:          "payment already processed",
		}, nil
	}

	claimed, err := s.state.ClaimSession(ctx, sessionID, s.cfg.ClaimTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to claim session")
	}
	if !claimed {
		return &dto.ReconciliationResult{
			SessionID:        sessionID,
			AlreadyProcessed: true,
			Message:          "payment is being processed",
		}, nil
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		s.releaseClaim(ctx, sessionID)
		return nil, err
	}
	if session.PaymentStatus != models.SessionStatusPaid {
		s.releaseClaim(ctx, sessionID)
		if s.metrics != nil {
			s.metrics.RecordReconciliation("unpaid")
		}
		return nil, appErrors.Clone(appErrors.ErrSessionUnpaid,
			fmt.Sprintf("checkout session is %q, expected %q", session.PaymentStatus, models.SessionStatusPaid))
	}

	feeID, amount, paidBy := s.resolveFee(ctx, sessionID, session)
	if feeID == "" {
		s.releaseClaim(ctx, sessionID)
		if s.metrics != nil {
			s.metrics.RecordReconciliation("untracked")
		}
		return nil, appErrors.Clone(appErrors.ErrSessionUntracked, "")
	}

	transactionID := session.PaymentIntent
	if transactionID == "" {
		transactionID = session.ID
	}
	if transactionID == "" {
		transactionID = sessionID
	}

	_, err = s.fees.RecordPayment(ctx, feeID, dto.RecordPaymentRequest{
		Amount:        amount,
		PaymentMethod: models.PaymentMethodCheckout,
		TransactionID: transactionID,
		PaidBy:        paidBy,
	})
	if err != nil {
		// The charge is verified but the balance update failed; free the
		// claim, keep the marker and retry with backoff. Only the
		// redirect path seeds the retry job: on the queue path the
		// returned error lets the queue count the attempt instead.
		s.releaseClaim(ctx, sessionID)
		if scheduleRetry {
			s.enqueueRetry(sessionID)
		}
		if s.metrics != nil {
			s.metrics.RecordReconciliation("update_failed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			"payment verified but fee update failed; retry scheduled")
	}

	if err := s.state.MarkProcessed(ctx, sessionID); err != nil {
		s.logger.Error("failed to mark session processed", zap.String("session_id", sessionID), zap.Error(err))
	}
	if err := s.state.DeletePending(ctx, sessionID); err != nil {
		s.logger.Warn("failed to delete pending marker", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.releaseClaim(ctx, sessionID)

	s.logger.Info("payment reconciled",
		zap.String("session_id", sessionID),
		zap.String("fee_id", feeID),
		zap.Float64("amount", amount))
	if s.metrics != nil {
		s.metrics.RecordReconciliation("applied")
	}

	return &dto.ReconciliationResult{
		SessionID: sessionID,
		FeeID:     feeID,
		Amount:    amount,
		Message:   "payment successful, fee updated",
	}, nil
}

// CancelRedirect handles payment=cancelled: no financial call is made,
// the pending marker is dropped.
func (s *PaymentService) CancelRedirect(ctx context.Context, sessionID string) *dto.ReconciliationResult {
	if sessionID != "" {
		if err := s.state.DeletePending(ctx, sessionID); err != nil {
			s.logger.Warn("failed to delete pending marker on cancel", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordReconciliation("cancelled")
	}
	return &dto.ReconciliationResult{SessionID: sessionID, Message: "payment was cancelled"}
}

// resolveFee prefers the pending marker and falls back to session
// metadata when the marker is gone (expired or lost).
func (s *PaymentService) resolveFee(ctx context.Context, sessionID string, session *models.CheckoutSession) (feeID string, amount float64, paidBy string) {
	paidBy = "Parent"

	pending, err := s.state.GetPending(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to read pending marker", zap.String("session_id", sessionID), zap.Error(err))
	}
	if pending != nil {
		if pending.PaidBy != "" {
			paidBy = pending.PaidBy
		}
		return pending.FeeID, pending.Amount, paidBy
	}

	feeID = session.Metadata["feeId"]
	amount = float64(session.AmountTotal) / 100
	return feeID, amount, paidBy
}

func (s *PaymentService) releaseClaim(ctx context.Context, sessionID string) {
	if err := s.state.ReleaseClaim(ctx, sessionID); err != nil {
		s.logger.Warn("failed to release session claim", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *PaymentService) enqueueRetry(sessionID string) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "reconcile",
		Payload: sessionID,
		// The failed redirect attempt counts as the first try, so the
		// total attempts stay at 1 + RetryAttempts.
		Attempt: 1,
	}
	if err := s.retryQueue.Enqueue(job); err != nil {
		s.logger.Error("failed to enqueue reconciliation retry", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *PaymentService) handleRetryJob(ctx context.Context, job jobs.Job) error {
	sessionID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected retry payload %T", job.Payload)
	}
	_, err := s.completeSession(ctx, sessionID, false)
	return err
}
