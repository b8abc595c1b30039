package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imrann-dev/school-erp-api/internal/models"
)

const (
	pendingKeyPrefix   = "payments:pending:"
	claimKeyPrefix     = "payments:claim:"
	processedKeyPrefix = "payments:processed:"
)

// PaymentStateRepository keeps the transient reconciliation state in
// Redis: pending checkout markers, the per-session completion claim and
// the durable processed-session set. Durable idempotency lives here so
// duplicate redirect delivery is caught across page reloads and tabs.
type PaymentStateRepository struct {
	client *redis.Client
}

// NewPaymentStateRepository constructs the repository.
func NewPaymentStateRepository(client *redis.Client) *PaymentStateRepository {
	return &PaymentStateRepository{client: client}
}

// SavePending records an initiated checkout keyed by session ID. The
// TTL bounds abandonment: markers for checkouts the payer never
// finishes expire on their own.
func (r *PaymentStateRepository) SavePending(ctx context.Context, pending *models.PendingPayment, ttl time.Duration) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending payment: %w", err)
	}
	if err := r.client.Set(ctx, pendingKeyPrefix+pending.SessionID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save pending payment: %w", err)
	}
	return nil
}

// GetPending returns the pending marker for a session, or nil when the
// marker is absent (expired or never written).
func (r *PaymentStateRepository) GetPending(ctx context.Context, sessionID string) (*models.PendingPayment, error) {
	raw, err := r.client.Get(ctx, pendingKeyPrefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending payment: %w", err)
	}

	var pending models.PendingPayment
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("decode pending payment: %w", err)
	}
	return &pending, nil
}

// DeletePending consumes the marker after successful reconciliation.
func (r *PaymentStateRepository) DeletePending(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, pendingKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete pending payment: %w", err)
	}
	return nil
}

// ClaimSession atomically takes the completion claim for a session.
// Returns false when another completion currently holds it. The TTL
// frees claims left behind by crashed attempts.
func (r *PaymentStateRepository) ClaimSession(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, claimKeyPrefix+sessionID, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim session: %w", err)
	}
	return ok, nil
}

// ReleaseClaim frees the claim so a later attempt may retry.
func (r *PaymentStateRepository) ReleaseClaim(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, claimKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("release session claim: %w", err)
	}
	return nil
}

// MarkProcessed durably records that the session's fee update has been
// applied. The key carries no TTL: a processed session stays processed.
func (r *PaymentStateRepository) MarkProcessed(ctx context.Context, sessionID string) error {
	if err := r.client.Set(ctx, processedKeyPrefix+sessionID, time.Now().UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("mark session processed: %w", err)
	}
	return nil
}

// IsProcessed reports whether the session was already applied.
func (r *PaymentStateRepository) IsProcessed(ctx context.Context, sessionID string) (bool, error) {
	count, err := r.client.Exists(ctx, processedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("check processed session: %w", err)
	}
	return count > 0, nil
}
