// Package billing records consultation payments after gateway verification.
package billing

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a transaction does not exist.
var ErrNotFound = errors.New("billing: not found")

// Transaction statuses.
const (
	StatusPaid    = "paid"
	StatusPending = "pending"
	StatusFailed  = "failed"
)

// Transaction is one finance ledger row. Consultation payments are the only
// transaction type the patient portal writes.
type Transaction struct {
	TxnID             string     `json:"txn_id"`
	AID               string     `json:"aid"`
	PID               string     `json:"pid"`
	DID               string     `json:"did"`
	TransactionType   string     `json:"transaction_type"`
	Amount            int64      `json:"amount"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	RazorpayOrderID   string     `json:"razorpay_order_id"`
	RazorpayPaymentID string     `json:"razorpay_payment_id"`
	RazorpaySignature string     `json:"razorpay_signature"`
	PaymentMethod     string     `json:"payment_method"`
	Description       string     `json:"description"`
	InitiatedAt       time.Time  `json:"initiated_at"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewConsultationTransaction builds the ledger row for a verified
// consultation payment.
func NewConsultationTransaction(aid, pid, did string, amount int64, orderID, paymentID, signature, method string) *Transaction {
	if method == "" {
		method = "card"
	}
	now := time.Now().UTC()
	return &Transaction{
		AID:               aid,
		PID:               pid,
		DID:               did,
		TransactionType:   "consultation",
		Amount:            amount,
		Currency:          "INR",
		Status:            StatusPaid,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: signature,
		PaymentMethod:     method,
		Description:       fmt.Sprintf("Consultation payment for appointment %s", aid),
		InitiatedAt:       now,
		PaidAt:            &now,
	}
}
