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
	fieldTenantName         = "tenant_name"
	fieldProperty           = "property"
	fieldMonthlyRent        = "monthly_rent"
	fieldContractEndingDate = "contract_ending_date"
	fieldFirstPaymentDate   = "first_payment_date"
	fieldSecondPaymentDate  = "second_payment_date"
	fieldThirdPaymentDate   = "third_payment_date"
	fieldFourthPaymentDate  = "fourth_payment_date"
)

// RentalHandler handles home-rent contract CRUD endpoints.
type RentalHandler struct {
	repo *dynamo.RentalRepo
}

func NewRentalHandler(repo *dynamo.RentalRepo) *RentalHandler {
	return &RentalHandler{repo: repo}
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.repo.Scan(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Total: len(contracts), Data: contracts})
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dates := make([]*time.Time, 5)
	for i, raw := range []*string{req.ContractEndingDate, req.FirstPaymentDate, req.SecondPaymentDate, req.ThirdPaymentDate, req.FourthPaymentDate} {
		t, err := parseDate(raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		dates[i] = t
	}

	now := time.Now().UTC()
	c := &domain.RentalContract{
		RentID:             id.New(),
		TenantName:         req.TenantName,
		Property:           req.Property,
		MonthlyRent:        req.MonthlyRent,
		ContractEndingDate: dates[0],
		FirstPaymentDate:   dates[1],
		SecondPaymentDate:  dates[2],
		ThirdPaymentDate:   dates[3],
		FourthPaymentDate:  dates[4],
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.repo.Put(r.Context(), c); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updates := map[string]interface{}{}
	if req.TenantName != nil {
		updates[fieldTenantName] = *req.TenantName
	}
	if req.Property != nil {
		updates[fieldProperty] = *req.Property
	}
	if req.MonthlyRent != nil {
		updates[fieldMonthlyRent] = *req.MonthlyRent
	}
	dateFields := map[string]*string{
		fieldContractEndingDate: req.ContractEndingDate,
		fieldFirstPaymentDate:   req.FirstPaymentDate,
		fieldSecondPaymentDate:  req.SecondPaymentDate,
		fieldThirdPaymentDate:   req.ThirdPaymentDate,
		fieldFourthPaymentDate:  req.FourthPaymentDate,
	}
	for field, raw := range dateFields {
		if err := setDateUpdate(updates, field, raw); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	rentID := chi.URLParam(r, "id")
	if len(updates) == 0 {
		c, err := h.repo.Get(r.Context(), rentID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
		return
	}
	if _, err := h.repo.Get(r.Context(), rentID); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.repo.Update(r.Context(), rentID, updates); err != nil {
		writeServiceError(w, err)
		return
	}
	c, err := h.repo.Get(r.Context(), rentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "rental contract deleted"})
}
