package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"e2d/internal/audit"
	"e2d/internal/auth"
	notifyapp "e2d/internal/notify/application"
	notify "e2d/internal/notify/domain"
)

// Handler serves notification campaigns.
type Handler struct {
	store   notifyapp.CampaignStore
	service *notifyapp.CampaignService
	audit   audit.Logger
}

// NewHandler constructs a campaigns handler.
func NewHandler(store notifyapp.CampaignStore, service *notifyapp.CampaignService, auditLogger audit.Logger) (*Handler, error) {
	if store == nil {
		return nil, errors.New("campaigns handler: nil store")
	}
	if service == nil {
		return nil, errors.New("campaigns handler: nil service")
	}
	return &Handler{store: store, service: service, audit: auditLogger}, nil
}

type campaignPayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Template    string `json:"template"`
	State       string `json:"state,omitempty"`
	Audience    string `json:"audience"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	SentCount   int    `json:"sent_count"`
	FailedCount int    `json:"failed_count"`
}

type runResponse struct {
	CampaignID string `json:"campaign_id"`
	State      string `json:"state"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
}

func toCampaignPayload(c notify.Campaign) campaignPayload {
	payload := campaignPayload{
		ID:          c.ID,
		Name:        c.Name,
		Template:    c.Template,
		State:       string(c.State),
		Audience:    string(c.Audience),
		SentCount:   c.SentCount,
		FailedCount: c.FailedCount,
	}
	if !c.ScheduledAt.IsZero() {
		payload.ScheduledAt = c.ScheduledAt.Format(time.RFC3339)
	}
	return payload
}

// ServeHTTP routes /api/v1/campaigns, /api/v1/campaigns/{id},
// /api/v1/campaigns/{id}/schedule and /api/v1/campaigns/{id}/run.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/campaigns"), "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case strings.HasSuffix(rest, "/schedule") && r.Method == http.MethodPost:
		h.schedule(w, r, strings.TrimSuffix(rest, "/schedule"))
	case strings.HasSuffix(rest, "/run") && r.Method == http.MethodPost:
		h.run(w, r, strings.TrimSuffix(rest, "/run"))
	case rest != "" && r.Method == http.MethodGet:
		h.get(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.store.List(r.Context())
	if err != nil {
		http.Error(w, "list campaigns error", http.StatusInternalServerError)
		return
	}
	payloads := make([]campaignPayload, 0, len(campaigns))
	for _, c := range campaigns {
		payloads = append(payloads, toCampaignPayload(c))
	}
	writeJSON(w, payloads)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.store.Get(r.Context(), id)
	if errors.Is(err, notify.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get campaign error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toCampaignPayload(*c))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload campaignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	c, err := notify.NewCampaign(payload.Name, payload.Template, notify.Audience(payload.Audience))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Create(r.Context(), c); err != nil {
		http.Error(w, "create campaign error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "campaign.create", c.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toCampaignPayload(*c))
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		At string `json:"at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	at := time.Now().UTC()
	if payload.At != "" {
		parsed, err := time.Parse(time.RFC3339, payload.At)
		if err != nil {
			http.Error(w, "invalid at", http.StatusBadRequest)
			return
		}
		at = parsed
	}
	c, err := h.store.Get(r.Context(), id)
	if errors.Is(err, notify.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get campaign error", http.StatusInternalServerError)
		return
	}
	if err := c.Schedule(at); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err := h.store.Update(r.Context(), c); err != nil {
		http.Error(w, "update campaign error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "campaign.schedule", id)
	writeJSON(w, toCampaignPayload(*c))
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.service.Run(r.Context(), id)
	if errors.Is(err, notify.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, notify.ErrInvalidTransition) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "run campaign error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "campaign.run", id)
	writeJSON(w, runResponse{
		CampaignID: result.CampaignID,
		State:      string(result.State),
		Sent:       result.Sent,
		Failed:     result.Failed,
	})
}

func (h *Handler) logAction(r *http.Request, action, id string) {
	if h.audit == nil {
		return
	}
	_ = h.audit.Log(r.Context(), audit.Entry{
		Actor:      auth.SubjectFromContext(r.Context()),
		Role:       string(auth.RoleFromContext(r.Context())),
		Action:     action,
		EntityType: "campaign",
		EntityID:   id,
		IP:         r.RemoteAddr,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
