package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halver/careband/internal/activity"
	"github.com/halver/careband/internal/apperr"
	"github.com/halver/careband/internal/health"
	"github.com/halver/careband/internal/models"
)

// Default page size for the activity view.
const daysPerPage = 4

// Handler holds API route handlers over the health store.
type Handler struct {
	store *health.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *health.Store) *Handler {
	return &Handler{store: store}
}

// GetProfile handles GET /profile.
func (h *Handler) GetProfile(w http.ResponseWriter, _ *http.Request) {
	profile := h.store.Profile()
	if profile == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no profile"))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// SaveProfile handles PUT /profile (create on first save, merge after).
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	profile, err := h.store.SaveProfile(r.Context(), req.input())
	if err != nil {
		slog.Error("save profile failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if profile == nil { // demo mode
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteProfile handles DELETE /profile.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProfile(r.Context()); err != nil {
		slog.Error("delete profile failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMedications handles GET /medications.
func (h *Handler) ListMedications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MedicationListResponse{Medications: h.store.Medications()})
}

// AddMedication handles POST /medications.
func (h *Handler) AddMedication(w http.ResponseWriter, r *http.Request) {
	var req MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	med, err := h.store.AddMedication(r.Context(), req.input())
	if err != nil {
		slog.Error("add medication failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if med == nil { // demo mode
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, med)
}

// UpdateMedication handles PUT /medications/{id}. The request body carries
// the editable fields; they are merged over the current record.
func (h *Handler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing := h.findMedication(id)
	if existing == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	var req MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	med := *existing
	med.Name = req.Name
	med.Dose = req.Dose
	med.Instructions = req.Instructions
	med.Frequency = req.Frequency
	med.TimeOfDay = req.TimeOfDay
	med.StartDate = req.StartDate
	med.EndDate = req.EndDate
	if req.RefillReminderDays != nil {
		med.RefillReminderDays = *req.RefillReminderDays
	}
	med.CurrentRefills = req.CurrentRefills
	med.Active = req.Active

	updated, err := h.store.UpdateMedication(r.Context(), med)
	if err != nil {
		slog.Error("update medication failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if updated == nil { // demo mode
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteMedication handles DELETE /medications/{id}. Logs referencing the
// medication are kept.
func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteMedication(r.Context(), id); err != nil {
		slog.Error("delete medication failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogTaken handles POST /medications/{id}/taken.
func (h *Handler) LogTaken(w http.ResponseWriter, r *http.Request) {
	h.logMedication(w, r, h.store.LogMedicationTaken)
}

// LogSnoozed handles POST /medications/{id}/snooze.
func (h *Handler) LogSnoozed(w http.ResponseWriter, r *http.Request) {
	h.logMedication(w, r, h.store.LogMedicationSnoozed)
}

func (h *Handler) logMedication(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*models.MedicationLog, error)) {
	id := chi.URLParam(r, "id")
	if h.findMedication(id) == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	log, err := op(r.Context(), id)
	if err != nil {
		slog.Error("log medication failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if log == nil { // demo mode
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

// ListCheckIns handles GET /checkins.
func (h *Handler) ListCheckIns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CheckInListResponse{CheckIns: h.store.CheckIns()})
}

// CheckIn handles POST /checkins. A second check-in on the same local
// calendar day is rejected with 409.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	checkIn, err := h.store.CheckIn(r.Context(), req.Status, req.Note)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("already checked in today"))
			return
		}
		slog.Error("check in failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if checkIn == nil { // demo mode
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, checkIn)
}

// Today handles GET /today: today's check-in plus the current streak.
func (h *Handler) Today(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TodayResponse{
		CheckIn: h.store.TodayCheckIn(),
		Streak:  h.store.Streak(),
		Demo:    h.store.Demo(),
	})
}

// Activity handles GET /activity with fixed-size day paging. Groups are
// rebuilt from scratch on every request, so paging stays stable.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = daysPerPage
	}

	groups := activity.Build(h.store.Medications(), h.store.MedicationLogs(), h.store.CheckIns(), time.Now())
	days, totalPages := activity.Page(groups, page, perPage)
	writeJSON(w, http.StatusOK, ActivityResponse{
		Days:       days,
		Page:       page,
		TotalPages: totalPages,
	})
}

func (h *Handler) findMedication(id string) *models.Medication {
	for _, m := range h.store.Medications() {
		if m.ID == id {
			out := m
			return &out
		}
	}
	return nil
}
