package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/facility-dashboard-api/internal/application/sync"
	"github.com/facility-dashboard-api/internal/domain"
	"github.com/facility-dashboard-api/internal/infrastructure/dynamo"
	"github.com/facility-dashboard-api/internal/pkg/id"
	"github.com/facility-dashboard-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName                 = "name"
	fieldModel                = "model"
	fieldOwner                = "owner"
	fieldPlateNumber          = "plate_number"
	fieldSequenceNumber       = "sequence_number"
	fieldLicenseExpiryDate    = "license_expiry_date"
	fieldInspectionExpiryDate = "inspection_expiry_date"
)

// VehicleHandler handles vehicle CRUD and sync endpoints.
type VehicleHandler struct {
	repo    *dynamo.VehicleRepo
	syncSvc sync.Service
}

func NewVehicleHandler(repo *dynamo.VehicleRepo, syncSvc sync.Service) *VehicleHandler {
	return &VehicleHandler{repo: repo, syncSvc: syncSvc}
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.repo.Scan(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Total: len(vehicles), Data: vehicles})
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	license, err := parseDate(req.LicenseExpiryDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	inspection, err := parseDate(req.InspectionExpiryDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	now := time.Now().UTC()
	v := &domain.Vehicle{
		VehicleID:            id.New(),
		Name:                 req.Name,
		Model:                req.Model,
		Owner:                req.Owner,
		PlateNumber:          req.PlateNumber,
		SequenceNumber:       req.SequenceNumber,
		LicenseExpiryDate:    license,
		InspectionExpiryDate: inspection,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := h.repo.Put(r.Context(), v); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Model != nil {
		updates[fieldModel] = *req.Model
	}
	if req.Owner != nil {
		updates[fieldOwner] = *req.Owner
	}
	if req.PlateNumber != nil {
		updates[fieldPlateNumber] = *req.PlateNumber
	}
	if req.SequenceNumber != nil {
		updates[fieldSequenceNumber] = *req.SequenceNumber
	}
	if err := setDateUpdate(updates, fieldLicenseExpiryDate, req.LicenseExpiryDate); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := setDateUpdate(updates, fieldInspectionExpiryDate, req.InspectionExpiryDate); err != nil {
		writeServiceError(w, err)
		return
	}
	h.applyUpdate(w, r.Context(), chi.URLParam(r, "id"), updates)
}

func (h *VehicleHandler) applyUpdate(w http.ResponseWriter, ctx context.Context, vehicleID string, updates map[string]interface{}) {
	if len(updates) == 0 {
		v, err := h.repo.Get(ctx, vehicleID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
		return
	}
	if _, err := h.repo.Get(ctx, vehicleID); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.repo.Update(ctx, vehicleID, updates); err != nil {
		writeServiceError(w, err)
		return
	}
	v, err := h.repo.Get(ctx, vehicleID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "vehicle deleted"})
}

// SyncAll refreshes insurance data for every eligible vehicle and returns the
// aggregate report, even when every vehicle failed.
func (h *VehicleHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncSvc.SyncAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SyncOne refreshes insurance data for a single vehicle.
func (h *VehicleHandler) SyncOne(w http.ResponseWriter, r *http.Request) {
	info, err := h.syncSvc.SyncOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// setDateUpdate parses an optional date field into an update map. An explicit
// empty string clears the stored date.
func setDateUpdate(updates map[string]interface{}, field string, value *string) error {
	if value == nil {
		return nil
	}
	t, err := parseDate(value)
	if err != nil {
		return err
	}
	updates[field] = t
	return nil
}
