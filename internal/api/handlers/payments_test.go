package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aurasutra/patient-api/internal/domain/billing"
	"github.com/aurasutra/patient-api/internal/gateway/razorpay"
)

type fakeGateway struct {
	order      *razorpay.Order
	orderErr   error
	validSig   bool
	lastAmount int64
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, _ string) (*razorpay.Order, error) {
	f.lastAmount = amountPaise
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.order, nil
}

func (f *fakeGateway) VerifySignature(string, string, string) bool {
	return f.validSig
}

type fakeTransactionStore struct {
	created []*billing.Transaction
}

func (f *fakeTransactionStore) Create(_ context.Context, txn *billing.Transaction) error {
	f.created = append(f.created, txn)
	return nil
}

func (f *fakeTransactionStore) ListByPatient(context.Context, string) ([]billing.Transaction, error) {
	out := make([]billing.Transaction, 0, len(f.created))
	for _, txn := range f.created {
		out = append(out, *txn)
	}
	return out, nil
}

func TestCreateOrderConvertsRupeesToPaise(t *testing.T) {
	gw := &fakeGateway{order: &razorpay.Order{ID: "order_1", Amount: 50000, Currency: "INR"}}
	h := NewPaymentHandler(gw, &fakeTransactionStore{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"amount":500,"receipt":"apt-1"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gw.lastAmount != 50000 {
		t.Errorf("expected 50000 paise, got %d", gw.lastAmount)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	h := NewPaymentHandler(&fakeGateway{}, &fakeTransactionStore{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"amount":0}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateOrderGatewayDown(t *testing.T) {
	gw := &fakeGateway{orderErr: context.DeadlineExceeded}
	h := NewPaymentHandler(gw, &fakeTransactionStore{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"amount":500}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func validTransactionBody() string {
	body, _ := json.Marshal(map[string]any{
		"aid":                 "apt-1",
		"pid":                 "pat-1",
		"did":                 "doc-1",
		"amount":              500,
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "sig",
	})
	return string(body)
}

func TestRecordTransactionVerifiedPayment(t *testing.T) {
	store := &fakeTransactionStore{}
	h := NewPaymentHandler(&fakeGateway{validSig: true}, store, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(validTransactionBody()))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one transaction, got %d", len(store.created))
	}

	txn := store.created[0]
	if txn.Status != billing.StatusPaid {
		t.Errorf("expected status paid, got %s", txn.Status)
	}
	if txn.TransactionType != "consultation" {
		t.Errorf("expected consultation type, got %s", txn.TransactionType)
	}
	if txn.PaidAt == nil {
		t.Error("expected paid_at to be stamped")
	}
}

func TestRecordTransactionRejectsForgedSignature(t *testing.T) {
	store := &fakeTransactionStore{}
	h := NewPaymentHandler(&fakeGateway{validSig: false}, store, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(validTransactionBody()))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(store.created) != 0 {
		t.Errorf("forged payment must not reach the ledger, got %d rows", len(store.created))
	}
}

func TestRecordTransactionRequiresIdentifiers(t *testing.T) {
	h := NewPaymentHandler(&fakeGateway{validSig: true}, &fakeTransactionStore{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(`{"aid":"apt-1","pid":"pat-1","did":"doc-1"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
