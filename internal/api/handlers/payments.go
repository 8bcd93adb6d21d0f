package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/domain/billing"
	"github.com/aurasutra/patient-api/internal/gateway/razorpay"
	"github.com/aurasutra/patient-api/internal/observability/metrics"
)

// OrderCreator creates payment orders at the gateway.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// TransactionStore persists verified payments.
type TransactionStore interface {
	Create(ctx context.Context, txn *billing.Transaction) error
	ListByPatient(ctx context.Context, pid string) ([]billing.Transaction, error)
}

// PaymentHandler serves checkout order creation and transaction recording.
type PaymentHandler struct {
	gateway OrderCreator
	store   TransactionStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPaymentHandler creates a new handler.
func NewPaymentHandler(gateway OrderCreator, store TransactionStore, m *metrics.Metrics, logger *zap.Logger) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{gateway: gateway, store: store, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/orders", h.CreateOrder)
	r.Post("/transactions", h.RecordTransaction)
	r.Get("/transactions", h.ListTransactions)
	return r
}

// CreateOrderRequest is the body for POST /payments/orders. Amount is in
// rupees; the gateway is paid in paise.
type CreateOrderRequest struct {
	Amount  int64  `json:"amount"`
	Receipt string `json:"receipt"`
}

// CreateOrder handles POST /payments/orders.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		jsonError(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	order, err := h.gateway.CreateOrder(r.Context(), req.Amount*100, req.Receipt)
	if err != nil {
		h.logger.Error("order creation failed", zap.Error(err))
		jsonError(w, "payment gateway unavailable", http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// RecordTransactionRequest is the body for POST /payments/transactions.
type RecordTransactionRequest struct {
	AID               string `json:"aid"`
	PID               string `json:"pid"`
	DID               string `json:"did"`
	Amount            int64  `json:"amount"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	PaymentMethod     string `json:"payment_method"`
}

// RecordTransaction handles POST /payments/transactions. The checkout
// callback signature is verified before anything touches the ledger; a
// mismatch is rejected without recording.
func (h *PaymentHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AID == "" || req.PID == "" || req.DID == "" {
		jsonError(w, "aid, pid and did are required", http.StatusBadRequest)
		return
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		jsonError(w, "payment identifiers are required", http.StatusBadRequest)
		return
	}

	if !h.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		h.logger.Warn("payment signature mismatch",
			zap.String("order_id", req.RazorpayOrderID),
			zap.String("aid", req.AID))
		jsonError(w, "payment verification failed", http.StatusBadRequest)
		return
	}

	txn := billing.NewConsultationTransaction(
		req.AID, req.PID, req.DID, req.Amount,
		req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature,
		req.PaymentMethod,
	)
	if err := h.store.Create(r.Context(), txn); err != nil {
		h.logger.Error("record transaction failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if h.metrics != nil {
		h.metrics.PaymentsRecorded.Inc()
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "transaction": txn})
}

// ListTransactions handles GET /payments/transactions?pid=.
func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("pid")
	if pid == "" {
		jsonError(w, "pid is required", http.StatusBadRequest)
		return
	}

	txns, err := h.store.ListByPatient(r.Context(), pid)
	if err != nil {
		h.logger.Error("list transactions failed", zap.Error(err))
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if txns == nil {
		txns = []billing.Transaction{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}
