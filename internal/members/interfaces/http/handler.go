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
	members "e2d/internal/members/domain"
)

const dateLayout = "2006-01-02"

// MemberStore persists members.
type MemberStore interface {
	List(ctx context.Context, activeOnly bool) ([]members.Member, error)
	Get(ctx context.Context, id string) (*members.Member, error)
	Create(ctx context.Context, m *members.Member) error
	Update(ctx context.Context, m *members.Member) error
}

// ActivityStore persists sports activities.
type ActivityStore interface {
	List(ctx context.Context, memberID string) ([]members.Activity, error)
	Create(ctx context.Context, a *members.Activity) error
}

// Handler serves the member registry and sports activity tracking.
type Handler struct {
	store      MemberStore
	activities ActivityStore
	audit      audit.Logger
}

// NewHandler constructs a members handler.
func NewHandler(store MemberStore, activities ActivityStore, auditLogger audit.Logger) (*Handler, error) {
	if store == nil {
		return nil, errors.New("members handler: nil store")
	}
	if activities == nil {
		return nil, errors.New("members handler: nil activity store")
	}
	return &Handler{store: store, activities: activities, audit: auditLogger}, nil
}

type memberPayload struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Bureau    string `json:"bureau,omitempty"`
	JoinedAt  string `json:"joined_at,omitempty"`
	Active    bool   `json:"active"`
}

type activityPayload struct {
	ID         string `json:"id,omitempty"`
	MemberID   string `json:"member_id"`
	Discipline string `json:"discipline"`
	Date       string `json:"date"`
	Result     string `json:"result"`
}

func toMemberPayload(m members.Member) memberPayload {
	return memberPayload{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		Email:     m.Email,
		Bureau:    m.Bureau,
		JoinedAt:  m.JoinedAt.Format(dateLayout),
		Active:    m.Active,
	}
}

// ServeHTTP routes /api/v1/members, /api/v1/members/{id},
// /api/v1/activities and /api/v1/activities/summary.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/activities"):
		h.serveActivities(w, r, strings.Trim(strings.TrimPrefix(path, "/api/v1/activities"), "/"))
	case strings.HasPrefix(path, "/api/v1/members"):
		h.serveMembers(w, r, strings.Trim(strings.TrimPrefix(path, "/api/v1/members"), "/"))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveMembers(w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.listMembers(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.createMember(w, r)
	case rest != "" && r.Method == http.MethodGet:
		h.getMember(w, r, rest)
	case rest != "" && r.Method == http.MethodPut:
		h.updateMember(w, r, rest)
	case strings.HasSuffix(rest, "/deactivate") && r.Method == http.MethodPost:
		h.deactivateMember(w, r, strings.TrimSuffix(rest, "/deactivate"))
	case rest != "" && r.Method == http.MethodDelete:
		h.deactivateMember(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := h.store.List(r.Context(), activeOnly)
	if err != nil {
		http.Error(w, "list members error", http.StatusInternalServerError)
		return
	}
	payloads := make([]memberPayload, 0, len(list))
	for _, m := range list {
		payloads = append(payloads, toMemberPayload(m))
	}
	writeJSON(w, payloads)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Get(r.Context(), id)
	if errors.Is(err, members.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get member error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toMemberPayload(*m))
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	var payload memberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	joinedAt, _ := time.Parse(dateLayout, payload.JoinedAt)
	m, err := members.NewMember(payload.FirstName, payload.LastName, payload.Phone, payload.Email, payload.Bureau, joinedAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Create(r.Context(), m); err != nil {
		http.Error(w, "create member error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "member.create", m.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toMemberPayload(*m))
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request, id string) {
	var payload memberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	existing, err := h.store.Get(r.Context(), id)
	if errors.Is(err, members.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get member error", http.StatusInternalServerError)
		return
	}

	if payload.FirstName != "" {
		existing.FirstName = payload.FirstName
	}
	if payload.LastName != "" {
		existing.LastName = payload.LastName
	}
	if payload.Phone != "" {
		existing.Phone = payload.Phone
	}
	if payload.Email != "" {
		existing.Email = payload.Email
	}
	if payload.Bureau != "" {
		existing.Bureau = payload.Bureau
	}
	if err := h.store.Update(r.Context(), existing); err != nil {
		http.Error(w, "update member error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "member.update", id)
	writeJSON(w, toMemberPayload(*existing))
}

func (h *Handler) deactivateMember(w http.ResponseWriter, r *http.Request, id string) {
	existing, err := h.store.Get(r.Context(), id)
	if errors.Is(err, members.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get member error", http.StatusInternalServerError)
		return
	}
	existing.Deactivate()
	if err := h.store.Update(r.Context(), existing); err != nil {
		http.Error(w, "update member error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "member.deactivate", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveActivities(w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case rest == "summary" && r.Method == http.MethodGet:
		h.activitySummary(w, r)
	case rest == "" && r.Method == http.MethodGet:
		h.listActivities(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.createActivity(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	list, err := h.activities.List(r.Context(), r.URL.Query().Get("member_id"))
	if err != nil {
		http.Error(w, "list activities error", http.StatusInternalServerError)
		return
	}
	payloads := make([]activityPayload, 0, len(list))
	for _, a := range list {
		payloads = append(payloads, activityPayload{
			ID:         a.ID,
			MemberID:   a.MemberID,
			Discipline: a.Discipline,
			Date:       a.Date.Format(dateLayout),
			Result:     string(a.Result),
		})
	}
	writeJSON(w, payloads)
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	var payload activityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	activity, err := members.NewActivity(payload.MemberID, payload.Discipline, date, members.Result(payload.Result))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.activities.Create(r.Context(), activity); err != nil {
		http.Error(w, "create activity error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "activity.create", activity.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, activityPayload{
		ID:         activity.ID,
		MemberID:   activity.MemberID,
		Discipline: activity.Discipline,
		Date:       activity.Date.Format(dateLayout),
		Result:     string(activity.Result),
	})
}

func (h *Handler) activitySummary(w http.ResponseWriter, r *http.Request) {
	list, err := h.activities.List(r.Context(), "")
	if err != nil {
		http.Error(w, "list activities error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, members.SummarizeActivities(list))
}

func (h *Handler) logAction(r *http.Request, action, id string) {
	if h.audit == nil {
		return
	}
	_ = h.audit.Log(r.Context(), audit.Entry{
		Actor:      auth.SubjectFromContext(r.Context()),
		Role:       string(auth.RoleFromContext(r.Context())),
		Action:     action,
		EntityType: "member",
		EntityID:   id,
		IP:         r.RemoteAddr,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
