package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	members "e2d/internal/members/domain"
)

type stubMemberStore struct {
	members map[string]members.Member
	created []string
}

func newStubMemberStore(list ...members.Member) *stubMemberStore {
	store := &stubMemberStore{members: make(map[string]members.Member)}
	for _, m := range list {
		store.members[m.ID] = m
	}
	return store
}

func (s *stubMemberStore) List(_ context.Context, activeOnly bool) ([]members.Member, error) {
	out := make([]members.Member, 0, len(s.members))
	for _, m := range s.members {
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *stubMemberStore) Get(_ context.Context, id string) (*members.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, members.ErrNotFound
	}
	return &m, nil
}

func (s *stubMemberStore) Create(_ context.Context, m *members.Member) error {
	s.members[m.ID] = *m
	s.created = append(s.created, m.ID)
	return nil
}

func (s *stubMemberStore) Update(_ context.Context, m *members.Member) error {
	if _, ok := s.members[m.ID]; !ok {
		return members.ErrNotFound
	}
	s.members[m.ID] = *m
	return nil
}

type stubActivityStore struct {
	activities []members.Activity
}

func (s *stubActivityStore) List(_ context.Context, memberID string) ([]members.Activity, error) {
	if memberID == "" {
		return s.activities, nil
	}
	var out []members.Activity
	for _, a := range s.activities {
		if a.MemberID == memberID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubActivityStore) Create(_ context.Context, a *members.Activity) error {
	s.activities = append(s.activities, *a)
	return nil
}

func testMember(t *testing.T, first, last string, active bool) members.Member {
	t.Helper()
	m, err := members.NewMember(first, last, "690000000", "", "membre", time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewMember: %v", err)
	}
	if !active {
		m.Deactivate()
	}
	return *m
}

func newTestHandler(t *testing.T, store *stubMemberStore, activities *stubActivityStore) *Handler {
	t.Helper()
	h, err := NewHandler(store, activities, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestListMembersActiveFilter(t *testing.T) {
	store := newStubMemberStore(
		testMember(t, "Alice", "Mbarga", true),
		testMember(t, "Jean", "Fotso", false),
	)
	h := newTestHandler(t, store, &stubActivityStore{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/members?active=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payloads []memberPayload
	if err := json.NewDecoder(rec.Body).Decode(&payloads); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("len = %d, want 1", len(payloads))
	}
	if payloads[0].FirstName != "Alice" {
		t.Fatalf("first name = %q", payloads[0].FirstName)
	}
}

func TestCreateMemberValidation(t *testing.T) {
	store := newStubMemberStore()
	h := newTestHandler(t, store, &stubActivityStore{})

	body := strings.NewReader(`{"first_name":"","last_name":"Fotso"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/members", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(store.created) != 0 {
		t.Fatalf("member persisted despite validation failure")
	}
}

func TestCreateAndGetMember(t *testing.T) {
	store := newStubMemberStore()
	h := newTestHandler(t, store, &stubActivityStore{})

	body := strings.NewReader(`{"first_name":"Paul","last_name":"Nganou","phone":"677112233","joined_at":"2024-02-01"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/members", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var created memberPayload
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("missing generated id")
	}
	if !created.Active {
		t.Fatalf("new member should be active")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/members/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestDeactivateMember(t *testing.T) {
	m := testMember(t, "Alice", "Mbarga", true)
	store := newStubMemberStore(m)
	h := newTestHandler(t, store, &stubActivityStore{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/members/"+m.ID+"/deactivate", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if store.members[m.ID].Active {
		t.Fatalf("member still active")
	}
}

func TestGetMemberNotFound(t *testing.T) {
	h := newTestHandler(t, newStubMemberStore(), &stubActivityStore{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/members/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateActivityAndSummary(t *testing.T) {
	activities := &stubActivityStore{}
	h := newTestHandler(t, newStubMemberStore(), activities)

	body := strings.NewReader(`{"member_id":"m-1","discipline":"football","date":"2024-03-09","result":"win"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/activities", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	body = strings.NewReader(`{"member_id":"m-2","discipline":"football","date":"2024-03-16","result":"loss"}`)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/activities", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var stats []members.DisciplineStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	if stats[0].Discipline != "football" || stats[0].Participants != 2 || stats[0].Wins != 1 {
		t.Fatalf("unexpected stats: %+v", stats[0])
	}
}

func TestCreateActivityInvalidResult(t *testing.T) {
	h := newTestHandler(t, newStubMemberStore(), &stubActivityStore{})
	body := strings.NewReader(`{"member_id":"m-1","discipline":"football","date":"2024-03-09","result":"tied"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/activities", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
