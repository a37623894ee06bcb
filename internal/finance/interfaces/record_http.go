package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"e2d/internal/audit"
	"e2d/internal/auth"
	finance "e2d/internal/finance/domain"
	"e2d/internal/finance/infrastructure/postgres"
)

// RecordStore persists financial records.
type RecordStore interface {
	List(ctx context.Context, filter postgres.ListFilter) ([]finance.Record, error)
	Get(ctx context.Context, id string) (*finance.Record, error)
	Create(ctx context.Context, record *finance.Record) error
	Update(ctx context.Context, record *finance.Record) error
	Delete(ctx context.Context, id string) error
}

// RecordsHandler serves CRUD for cotisations, epargnes, prets, sanctions and
// aides under /api/v1/records.
type RecordsHandler struct {
	store RecordStore
	audit audit.Logger
}

// NewRecordsHandler constructs a handler.
func NewRecordsHandler(store RecordStore, auditLogger audit.Logger) (*RecordsHandler, error) {
	if store == nil {
		return nil, errors.New("records handler: nil store")
	}
	return &RecordsHandler{store: store, audit: auditLogger}, nil
}

type recordPayload struct {
	ID           string `json:"id,omitempty"`
	Kind         string `json:"kind"`
	MemberID     string `json:"member_id"`
	MemberName   string `json:"member_name"`
	Category     string `json:"category"`
	Amount       string `json:"amount"`
	RecordDate   string `json:"record_date"`
	MeetingID    string `json:"meeting_id,omitempty"`
	Status       string `json:"status"`
	InterestRate string `json:"interest_rate,omitempty"`
}

func toPayload(r finance.Record) recordPayload {
	return recordPayload{
		ID:           r.ID,
		Kind:         string(r.Kind),
		MemberID:     r.MemberID,
		MemberName:   r.MemberName,
		Category:     r.Category,
		Amount:       r.Amount.String(),
		RecordDate:   r.RecordDate.Format(finance.FilterDateLayout),
		MeetingID:    r.MeetingID,
		Status:       string(r.Status),
		InterestRate: r.InterestRate.String(),
	}
}

// ServeHTTP routes /api/v1/records and /api/v1/records/{id}.
func (h *RecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/records")
	id = strings.Trim(id, "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case id != "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case id != "" && r.Method == http.MethodPut:
		h.update(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *RecordsHandler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := postgres.ListFilter{
		MemberID:  query.Get("member_id"),
		MeetingID: query.Get("meeting_id"),
	}
	if kindParam := query.Get("kind"); kindParam != "" {
		kind, ok := finance.ParseKind(kindParam)
		if !ok {
			http.Error(w, "unknown kind", http.StatusBadRequest)
			return
		}
		filter.Kind = kind
	}

	records, err := h.store.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "list records error", http.StatusInternalServerError)
		return
	}
	payloads := make([]recordPayload, 0, len(records))
	for _, record := range records {
		payloads = append(payloads, toPayload(record))
	}
	writeJSON(w, payloads)
}

func (h *RecordsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	record, err := h.store.Get(r.Context(), id)
	if errors.Is(err, finance.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get record error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toPayload(*record))
}

func (h *RecordsHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	record, err := recordFromPayload(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Create(r.Context(), record); err != nil {
		http.Error(w, "create record error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "record.create", record.ID, payload)

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toPayload(*record))
}

func (h *RecordsHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	existing, err := h.store.Get(r.Context(), id)
	if errors.Is(err, finance.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "get record error", http.StatusInternalServerError)
		return
	}

	updated, err := applyPayload(*existing, payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Update(r.Context(), &updated); err != nil {
		http.Error(w, "update record error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "record.update", id, payload)
	writeJSON(w, toPayload(updated))
}

func (h *RecordsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, finance.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "delete record error", http.StatusInternalServerError)
		return
	}
	h.logAction(r, "record.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func recordFromPayload(payload recordPayload) (*finance.Record, error) {
	kind, ok := finance.ParseKind(payload.Kind)
	if !ok {
		return nil, finance.ErrUnknownKind
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		return nil, finance.ErrNonPositiveAmount
	}
	recordDate, err := time.Parse(finance.FilterDateLayout, payload.RecordDate)
	if err != nil {
		return nil, finance.ErrZeroRecordDate
	}
	record, err := finance.NewRecord(kind, payload.MemberID, payload.MemberName, payload.Category,
		amount, recordDate, payload.MeetingID, finance.Status(payload.Status))
	if err != nil {
		return nil, err
	}
	if payload.InterestRate != "" {
		rate, err := decimal.NewFromString(payload.InterestRate)
		if err != nil {
			return nil, errors.New("finance: invalid interest rate")
		}
		record.InterestRate = rate
	}
	return record, nil
}

func applyPayload(existing finance.Record, payload recordPayload) (finance.Record, error) {
	if payload.MemberName != "" {
		existing.MemberName = payload.MemberName
	}
	if payload.Category != "" {
		existing.Category = payload.Category
	}
	if payload.Amount != "" {
		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil || !amount.IsPositive() {
			return finance.Record{}, finance.ErrNonPositiveAmount
		}
		existing.Amount = amount
	}
	if payload.RecordDate != "" {
		recordDate, err := time.Parse(finance.FilterDateLayout, payload.RecordDate)
		if err != nil {
			return finance.Record{}, finance.ErrZeroRecordDate
		}
		existing.RecordDate = recordDate
	}
	if payload.MeetingID != "" {
		existing.MeetingID = payload.MeetingID
	}
	if payload.Status != "" {
		status := finance.Status(payload.Status)
		if !finance.ValidStatus(existing.Kind, status) {
			return finance.Record{}, finance.ErrInvalidStatus
		}
		existing.Status = status
	}
	if payload.InterestRate != "" {
		rate, err := decimal.NewFromString(payload.InterestRate)
		if err != nil {
			return finance.Record{}, errors.New("finance: invalid interest rate")
		}
		existing.InterestRate = rate
	}
	return existing, nil
}

func (h *RecordsHandler) logAction(r *http.Request, action, id string, payload any) {
	if h.audit == nil {
		return
	}
	var metadata json.RawMessage
	if payload != nil {
		metadata, _ = json.Marshal(payload)
	}
	_ = h.audit.Log(r.Context(), audit.Entry{
		Actor:      auth.SubjectFromContext(r.Context()),
		Role:       string(auth.RoleFromContext(r.Context())),
		Action:     action,
		EntityType: "financial_record",
		EntityID:   id,
		Metadata:   metadata,
		IP:         r.RemoteAddr,
	})
}
