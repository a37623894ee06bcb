package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"e2d/internal/audit"
	"e2d/internal/auth"
	periods "e2d/internal/periods/domain"
)

const dateLayout = "2006-01-02"

// PeriodStore persists fiscal periods.
type PeriodStore interface {
	List(ctx context.Context) ([]periods.FiscalPeriod, error)
	Get(ctx context.Context, id string) (*periods.FiscalPeriod, error)
	Create(ctx context.Context, p *periods.FiscalPeriod) error
	Update(ctx context.Context, p *periods.FiscalPeriod) error
}

// MeetingStore persists meetings.
type MeetingStore interface {
	List(ctx context.Context) ([]periods.Meeting, error)
	Get(ctx context.Context, id string) (*periods.Meeting, error)
	Create(ctx context.Context, m *periods.Meeting) error
	Delete(ctx context.Context, id string) error
}

// Handler serves the fiscal calendar: exercises and meetings.
type Handler struct {
	periods  PeriodStore
	meetings MeetingStore
	audit    audit.Logger
}

// NewHandler constructs a periods handler.
func NewHandler(periodStore PeriodStore, meetingStore MeetingStore, auditLogger audit.Logger) (*Handler, error) {
	if periodStore == nil {
		return nil, errors.New("periods handler: nil period store")
	}
	if meetingStore == nil {
		return nil, errors.New("periods handler: nil meeting store")
	}
	return &Handler{periods: periodStore, meetings: meetingStore, audit: auditLogger}, nil
}

type periodPayload struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type meetingPayload struct {
	ID      string `json:"id,omitempty"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

func toPeriodPayload(p periods.FiscalPeriod) periodPayload {
	return periodPayload{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate.Format(dateLayout),
		EndDate:   p.EndDate.Format(dateLayout),
	}
}

func toMeetingPayload(m periods.Meeting) meetingPayload {
	return meetingPayload{ID: m.ID, Subject: m.Subject, Date: m.Date.Format(dateLayout)}
}

// ServeHTTP routes /api/v1/periods, /api/v1/periods/{id},
// /api/v1/periods/{id}/meetings, /api/v1/periods/{id}/inconsistent-meetings
// and /api/v1/meetings[/{id}].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/periods"):
		h.servePeriods(w, r, strings.Trim(strings.TrimPrefix(path, "/api/v1/periods"), "/"))
	case strings.HasPrefix(path, "/api/v1/meetings"):
		h.serveMeetings(w, r, strings.Trim(strings.TrimPrefix(path, "/api/v1/meetings"), "/"))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) servePeriods(w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.listPeriods(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.createPeriod(w, r)
	case strings.HasSuffix(rest, "/inconsistent-meetings") && r.Method == http.MethodGet:
		h.periodInconsistentMeetings(w, r, strings.TrimSuffix(rest, "/inconsistent-meetings"))
	case strings.HasSuffix(rest, "/meetings") && r.Method == http.MethodGet:
		h.periodMeetings(w, r, strings.TrimSuffix(rest, "/meetings"))
	case rest != "" && r.Method == http.MethodGet:
		h.getPeriod(w, r, rest)
	case rest != "" && r.Method == http.MethodPut:
		h.updatePeriod(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listPeriods(w http.ResponseWriter, r *http.Request) {
	list, err := h.periods.List(r.Context())
	if err != nil {
		http.Error(w, "list periods error", http.StatusInternalServerError)
		return
	}
	payloads := make([]periodPayload, 0, len(list))
	for _, p := range list {
		payloads = append(payloads, toPeriodPayload(p))
	}
	writeJSON(w, payloads)
}

func (h *Handler) getPeriod(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.periods.Get(r.Context(), id)
	if errors.Is(err, periods.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get period error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toPeriodPayload(*p))
}

func (h *Handler) createPeriod(w http.ResponseWriter, r *http.Request) {
	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(dateLayout, payload.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dateLayout, payload.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date", http.StatusBadRequest)
		return
	}
	p, err := periods.NewFiscalPeriod(payload.Name, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.periods.Create(r.Context(), p); err != nil {
		http.Error(w, "create period error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "period.create", "fiscal_period", p.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toPeriodPayload(*p))
}

func (h *Handler) updatePeriod(w http.ResponseWriter, r *http.Request, id string) {
	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	existing, err := h.periods.Get(r.Context(), id)
	if errors.Is(err, periods.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get period error", http.StatusInternalServerError)
		return
	}
	if payload.Name != "" {
		existing.Name = payload.Name
	}
	if payload.StartDate != "" {
		start, err := time.Parse(dateLayout, payload.StartDate)
		if err != nil {
			http.Error(w, "invalid start_date", http.StatusBadRequest)
			return
		}
		existing.StartDate = start
	}
	if payload.EndDate != "" {
		end, err := time.Parse(dateLayout, payload.EndDate)
		if err != nil {
			http.Error(w, "invalid end_date", http.StatusBadRequest)
			return
		}
		existing.EndDate = end
	}
	if existing.StartDate.After(existing.EndDate) {
		http.Error(w, periods.ErrInvalidDateRange.Error(), http.StatusBadRequest)
		return
	}
	if err := h.periods.Update(r.Context(), existing); err != nil {
		http.Error(w, "update period error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "period.update", "fiscal_period", id)
	writeJSON(w, toPeriodPayload(*existing))
}

// periodMeetings lists the meetings whose date falls inside one period.
// Meetings join the exercise by date containment, so the set changes when
// the period bounds are edited.
func (h *Handler) periodMeetings(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.periods.Get(r.Context(), id)
	if errors.Is(err, periods.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get period error", http.StatusInternalServerError)
		return
	}
	all, err := h.meetings.List(r.Context())
	if err != nil {
		http.Error(w, "list meetings error", http.StatusInternalServerError)
		return
	}
	matched := periods.MeetingsInPeriod(all, *p)
	payloads := make([]meetingPayload, 0, len(matched))
	for _, m := range matched {
		payloads = append(payloads, toMeetingPayload(m))
	}
	writeJSON(w, payloads)
}

// periodInconsistentMeetings lists the meetings dated outside the period
// bounds, the consistency check counterpart of periodMeetings.
func (h *Handler) periodInconsistentMeetings(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.periods.Get(r.Context(), id)
	if errors.Is(err, periods.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get period error", http.StatusInternalServerError)
		return
	}
	all, err := h.meetings.List(r.Context())
	if err != nil {
		http.Error(w, "list meetings error", http.StatusInternalServerError)
		return
	}
	outside := periods.MeetingsOutsidePeriod(all, *p)
	payloads := make([]meetingPayload, 0, len(outside))
	for _, m := range outside {
		payloads = append(payloads, toMeetingPayload(m))
	}
	writeJSON(w, payloads)
}

func (h *Handler) serveMeetings(w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.listMeetings(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.createMeeting(w, r)
	case rest != "" && r.Method == http.MethodGet:
		h.getMeeting(w, r, rest)
	case rest != "" && r.Method == http.MethodDelete:
		h.deleteMeeting(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listMeetings(w http.ResponseWriter, r *http.Request) {
	list, err := h.meetings.List(r.Context())
	if err != nil {
		http.Error(w, "list meetings error", http.StatusInternalServerError)
		return
	}
	payloads := make([]meetingPayload, 0, len(list))
	for _, m := range list {
		payloads = append(payloads, toMeetingPayload(m))
	}
	writeJSON(w, payloads)
}

func (h *Handler) getMeeting(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.meetings.Get(r.Context(), id)
	if errors.Is(err, periods.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get meeting error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toMeetingPayload(*m))
}

func (h *Handler) createMeeting(w http.ResponseWriter, r *http.Request) {
	var payload meetingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	m, err := periods.NewMeeting(payload.Subject, date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.meetings.Create(r.Context(), m); err != nil {
		http.Error(w, "create meeting error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "meeting.create", "meeting", m.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toMeetingPayload(*m))
}

func (h *Handler) deleteMeeting(w http.ResponseWriter, r *http.Request, id string) {
	err := h.meetings.Delete(r.Context(), id)
	if errors.Is(err, periods.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "delete meeting error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "meeting.delete", "meeting", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logAction(r *http.Request, action, entityType, id string) {
	if h.audit == nil {
		return
	}
	_ = h.audit.Log(r.Context(), audit.Entry{
		Actor:      auth.SubjectFromContext(r.Context()),
		Role:       string(auth.RoleFromContext(r.Context())),
		Action:     action,
		EntityType: entityType,
		EntityID:   id,
		IP:         r.RemoteAddr,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
