package billing

import (
	"strings"
	"testing"
	"time"
)

func TestNewConsultationTransaction(t *testing.T) {
	before := time.Now().UTC()
	txn := NewConsultationTransaction("apt-1", "pat-1", "doc-1", 50000,
		"order_123", "pay_456", "sig_789", "upi")

	if txn.TransactionType != "consultation" {
		t.Errorf("type = %s, want consultation", txn.TransactionType)
	}
	if txn.Status != StatusPaid {
		t.Errorf("status = %s, want %s", txn.Status, StatusPaid)
	}
	if txn.Currency != "INR" {
		t.Errorf("currency = %s, want INR", txn.Currency)
	}
	if txn.Amount != 50000 {
		t.Errorf("amount = %d, want 50000", txn.Amount)
	}
	if txn.PaymentMethod != "upi" {
		t.Errorf("method = %s, want upi", txn.PaymentMethod)
	}
	if !strings.Contains(txn.Description, "apt-1") {
		t.Errorf("description %q does not reference the appointment", txn.Description)
	}
	if txn.PaidAt == nil || txn.PaidAt.Before(before) {
		t.Errorf("paid_at = %v, want stamped at creation", txn.PaidAt)
	}
}

func TestNewConsultationTransactionDefaultsMethod(t *testing.T) {
	txn := NewConsultationTransaction("apt-1", "pat-1", "doc-1", 50000,
		"order_123", "pay_456", "sig_789", "")

	if txn.PaymentMethod != "card" {
		t.Errorf("method = %s, want card", txn.PaymentMethod)
	}
}
