package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/imrann-dev/school-erp-api/internal/models"
)

// FeeRepository persists fee records and their payment entries.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeColumns = `id, student_id, student_name, student_class, fee_type, amount, paid_amount, remaining_amount, status, due_date, created_at, updated_at`

// List returns fees matching the filter, newest first, with the total
// match count for pagination.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM fees WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		feeColumns, where, size, (page-1)*size)

	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fees: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM fees WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fees: %w", err)
	}

	return fees, total, nil
}

// Get fetches one fee with its payment entries, oldest entry first.
func (r *FeeRepository) Get(ctx context.Context, id string) (*models.Fee, error) {
	query := fmt.Sprintf(`SELECT %s FROM fees WHERE id = $1`, feeColumns)
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}

	const paymentsQuery = `SELECT id, fee_id, amount, payment_method, transaction_id, paid_by, payment_date
FROM fee_payments WHERE fee_id = $1 ORDER BY payment_date ASC`
	if err := r.db.SelectContext(ctx, &fee.Payments, paymentsQuery, id); err != nil {
		return nil, fmt.Errorf("list fee payments: %w", err)
	}

	return &fee, nil
}

// Create inserts a new fee record.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	const query = `INSERT INTO fees (id, student_id, student_name, student_class, fee_type, amount, paid_amount, remaining_amount, status, due_date, created_at, updated_at)
VALUES (:id, :student_id, :student_name, :student_class, :fee_type, :amount, :paid_amount, :remaining_amount, :status, :due_date, :created_at, :updated_at)`
	now := time.Now().UTC()
	fee.CreatedAt = now
	fee.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("insert fee: %w", err)
	}
	return nil
}

// Update persists mutable fee attributes and recomputed balances.
func (r *FeeRepository) Update(ctx context.Context, fee *models.Fee) error {
	const query = `UPDATE fees SET fee_type = :fee_type, amount = :amount, paid_amount = :paid_amount,
remaining_amount = :remaining_amount, status = :status, due_date = :due_date, updated_at = :updated_at
WHERE id = :id`
	fee.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, query, fee)
	if err != nil {
		return fmt.Errorf("update fee: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AppendPayment atomically inserts a payment entry and advances the
// fee's balances within one transaction. The guard and the increment
// run in a single statement so concurrent payments can neither push
// paid_amount past amount nor overwrite each other's totals. Returns
// the updated fee row, models.ErrBalanceExceeded when the guard trips,
// or sql.ErrNoRows when the fee does not exist.
func (r *FeeRepository) AppendPayment(ctx context.Context, feeID string, entry *models.PaymentEntry) (*models.Fee, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}

	const insertQuery = `INSERT INTO fee_payments (id, fee_id, amount, payment_method, transaction_id, paid_by, payment_date)
VALUES (:id, :fee_id, :amount, :payment_method, :transaction_id, :paid_by, :payment_date)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, entry); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert fee payment: %w", err)
	}

	updateQuery := fmt.Sprintf(`UPDATE fees SET paid_amount = paid_amount + $1,
remaining_amount = amount - (paid_amount + $1),
status = CASE WHEN paid_amount + $1 >= amount THEN 'Paid' WHEN paid_amount + $1 > 0 THEN 'Partial' ELSE 'Pending' END,
updated_at = $2
WHERE id = $3 AND paid_amount + $1 <= amount
RETURNING %s`, feeColumns)

	var fee models.Fee
	if err := tx.GetContext(ctx, &fee, updateQuery, entry.Amount, time.Now().UTC(), feeID); err != nil {
		_ = tx.Rollback()
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update fee balance: %w", err)
		}
		var exists bool
		if checkErr := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM fees WHERE id = $1)`, feeID); checkErr == nil && exists {
			return nil, models.ErrBalanceExceeded
		}
		return nil, sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", err)
	}
	return &fee, nil
}

// Delete removes a fee record and its payment entries.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete fee: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats aggregates collection figures across all fees.
func (r *FeeRepository) Stats(ctx context.Context) (*models.FeeStats, error) {
	const query = `SELECT COUNT(*) AS total_fees,
COUNT(*) FILTER (WHERE status = 'Paid') AS paid_fees,
COUNT(*) FILTER (WHERE status = 'Partial') AS partial_fees,
COUNT(*) FILTER (WHERE status = 'Pending') AS pending_fees,
COALESCE(SUM(amount), 0) AS total_amount,
COALESCE(SUM(paid_amount), 0) AS paid_amount,
COALESCE(SUM(remaining_amount), 0) AS remaining_amount
FROM fees`
	var stats models.FeeStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("aggregate fee stats: %w", err)
	}
	return &stats, nil
}

// Overdue returns unpaid fees whose due date has passed, most overdue
// first.
func (r *FeeRepository) Overdue(ctx context.Context, asOf time.Time) ([]models.Fee, error) {
	query := fmt.Sprintf(`SELECT %s FROM fees WHERE status <> 'Paid' AND due_date < $1 ORDER BY due_date ASC`, feeColumns)
	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, query, asOf); err != nil {
		return nil, fmt.Errorf("list overdue fees: %w", err)
	}
	return fees, nil
}
