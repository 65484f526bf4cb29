package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/facility-dashboard-api/internal/domain"
	"github.com/facility-dashboard-api/internal/infrastructure/dynamo"
	"github.com/facility-dashboard-api/internal/pkg/id"
	"github.com/facility-dashboard-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldAccountNumber = "account_number"
	fieldLocation      = "location"
	fieldAmount        = "amount"
	fieldDueDate       = "due_date"
	fieldPaymentStatus = "payment_status"
)

// BillHandler handles electricity-bill CRUD endpoints.
type BillHandler struct {
	repo *dynamo.BillRepo
}

func NewBillHandler(repo *dynamo.BillRepo) *BillHandler {
	return &BillHandler{repo: repo}
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.repo.Scan(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Total: len(bills), Data: bills})
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := req.PaymentStatus
	if status == "" {
		status = domain.PaymentStatusUnpaid
	}
	now := time.Now().UTC()
	b := &domain.ElectricityBill{
		BillID:        id.New(),
		AccountNumber: req.AccountNumber,
		Location:      req.Location,
		Amount:        req.Amount,
		DueDate:       due,
		PaymentStatus: status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.repo.Put(r.Context(), b); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updates := map[string]interface{}{}
	if req.AccountNumber != nil {
		updates[fieldAccountNumber] = *req.AccountNumber
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.Amount != nil {
		updates[fieldAmount] = *req.Amount
	}
	if req.PaymentStatus != nil {
		updates[fieldPaymentStatus] = *req.PaymentStatus
	}
	if err := setDateUpdate(updates, fieldDueDate, req.DueDate); err != nil {
		writeServiceError(w, err)
		return
	}

	billID := chi.URLParam(r, "id")
	if len(updates) == 0 {
		b, err := h.repo.Get(r.Context(), billID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
		return
	}
	if _, err := h.repo.Get(r.Context(), billID); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.repo.Update(r.Context(), billID, updates); err != nil {
		writeServiceError(w, err)
		return
	}
	b, err := h.repo.Get(r.Context(), billID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "electricity bill deleted"})
}
