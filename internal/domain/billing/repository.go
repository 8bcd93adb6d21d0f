package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/infrastructure/postgres"
	"github.com/aurasutra/patient-api/internal/infrastructure/redpanda"
)

const transactionColumns = `
	txn_id, aid, pid, did, transaction_type, amount, currency, status,
	razorpay_order_id, razorpay_payment_id, razorpay_signature,
	payment_method, description, initiated_at, paid_at, created_at
`

// Repository persists finance transactions in Postgres.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// Create records a transaction and emits a payment.captured event through
// the outbox in the same transaction.
func (r *Repository) Create(ctx context.Context, txn *Transaction) error {
	if txn.TxnID == "" {
		txn.TxnID = uuid.New().String()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO finance_transactions
			(txn_id, aid, pid, did, transaction_type, amount, currency, status,
			 razorpay_order_id, razorpay_payment_id, razorpay_signature,
			 payment_method, description, initiated_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, query,
		txn.TxnID, txn.AID, txn.PID, txn.DID, txn.TransactionType,
		txn.Amount, txn.Currency, txn.Status,
		txn.RazorpayOrderID, txn.RazorpayPaymentID, txn.RazorpaySignature,
		txn.PaymentMethod, txn.Description, txn.InitiatedAt, txn.PaidAt,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"txn_id":   txn.TxnID,
		"aid":      txn.AID,
		"pid":      txn.PID,
		"amount":   txn.Amount,
		"currency": txn.Currency,
		"status":   txn.Status,
	})
	if err != nil {
		return fmt.Errorf("encode payment event: %w", err)
	}
	entry := &postgres.OutboxEntry{
		AggregateID:   txn.TxnID,
		AggregateType: "FinanceTransaction",
		EventType:     "PaymentCaptured",
		Payload:       payload,
		Topic:         redpanda.TopicPaymentCaptured,
		Key:           txn.PID,
	}
	if err := postgres.WriteEntry(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.Info("transaction recorded",
		zap.String("txn_id", txn.TxnID),
		zap.String("aid", txn.AID),
		zap.Int64("amount", txn.Amount))
	return nil
}

// ListByPatient retrieves a patient's transactions, newest first.
func (r *Repository) ListByPatient(ctx context.Context, pid string) ([]Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM finance_transactions
		WHERE pid = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, pid)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var txn Transaction
		err := rows.Scan(
			&txn.TxnID, &txn.AID, &txn.PID, &txn.DID, &txn.TransactionType,
			&txn.Amount, &txn.Currency, &txn.Status,
			&txn.RazorpayOrderID, &txn.RazorpayPaymentID, &txn.RazorpaySignature,
			&txn.PaymentMethod, &txn.Description, &txn.InitiatedAt, &txn.PaidAt, &txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
