package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/facility-dashboard-api/internal/application/dispatch"
	"github.com/facility-dashboard-api/internal/application/scheduler"
	"github.com/facility-dashboard-api/internal/application/subscriber"
	"github.com/facility-dashboard-api/internal/domain"
	"github.com/facility-dashboard-api/internal/pkg/validate"
)

// NotificationHandler handles push subscription lifecycle and the manual
// notification triggers.
type NotificationHandler struct {
	subs     subscriber.Service
	dispatch dispatch.Service
	sched    *scheduler.Scheduler
}

func NewNotificationHandler(subs subscriber.Service, dispatchSvc dispatch.Service, sched *scheduler.Scheduler) *NotificationHandler {
	return &NotificationHandler{subs: subs, dispatch: dispatchSvc, sched: sched}
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req domain.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := h.subs.Subscribe(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req domain.UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.subs.Unsubscribe(r.Context(), req.Endpoint); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "unsubscribed"})
}

// Check runs the expiry evaluation and dispatch pipeline immediately.
func (h *NotificationHandler) Check(w http.ResponseWriter, r *http.Request) {
	report, err := h.sched.TriggerNow(r.Context())
	if errors.Is(err, scheduler.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type testNotificationRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// Test sends one synthetic notification. With an email address it goes to
// that address; otherwise it is pushed to all current subscribers.
func (h *NotificationHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req testNotificationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.dispatch.SendTest(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "test notification sent"})
}
