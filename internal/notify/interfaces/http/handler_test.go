package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	members "e2d/internal/members/domain"
	notifyapp "e2d/internal/notify/application"
	notify "e2d/internal/notify/domain"
)

type memStore struct {
	campaigns map[string]notify.Campaign
}

func newMemStore() *memStore {
	return &memStore{campaigns: make(map[string]notify.Campaign)}
}

func (s *memStore) List(_ context.Context) ([]notify.Campaign, error) {
	out := make([]notify.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) Get(_ context.Context, id string) (*notify.Campaign, error) {
	c, ok := s.campaigns[id]
	if !ok {
		return nil, notify.ErrNotFound
	}
	return &c, nil
}

func (s *memStore) Create(_ context.Context, c *notify.Campaign) error {
	s.campaigns[c.ID] = *c
	return nil
}

func (s *memStore) Update(_ context.Context, c *notify.Campaign) error {
	if _, ok := s.campaigns[c.ID]; !ok {
		return notify.ErrNotFound
	}
	s.campaigns[c.ID] = *c
	return nil
}

type memberReader struct{}

func (memberReader) List(_ context.Context, _ bool) ([]members.Member, error) {
	return []members.Member{
		{ID: "m-1", FirstName: "Alice", LastName: "Mbarga", Active: true},
	}, nil
}

type recordingChannel struct {
	messages []string
}

func (c *recordingChannel) Send(_ context.Context, _ notifyapp.Recipient, message string) error {
	c.messages = append(c.messages, message)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *memStore, *recordingChannel) {
	t.Helper()
	store := newMemStore()
	channel := &recordingChannel{}
	service, err := notifyapp.NewCampaignService(store, memberReader{}, channel, nil)
	if err != nil {
		t.Fatalf("NewCampaignService: %v", err)
	}
	h, err := NewHandler(store, service, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, store, channel
}

func TestCampaignCreateScheduleRun(t *testing.T) {
	h, store, channel := newTestHandler(t)

	body := strings.NewReader(`{"name":"Rappel","template":"Bonjour {name}","audience":"active"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created campaignPayload
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.State != string(notify.StateDraft) {
		t.Fatalf("state = %s", created.State)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+created.ID+"/schedule", strings.NewReader(`{}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+created.ID+"/run", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d: %s", rec.Code, rec.Body.String())
	}
	var result runResponse
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.State != string(notify.StateSent) || result.Sent != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(channel.messages) != 1 || channel.messages[0] != "Bonjour Alice Mbarga" {
		t.Fatalf("messages = %v", channel.messages)
	}
	if store.campaigns[created.ID].State != notify.StateSent {
		t.Fatalf("stored state = %s", store.campaigns[created.ID].State)
	}
}

func TestCampaignRunDraftConflict(t *testing.T) {
	h, store, _ := newTestHandler(t)
	c, err := notify.NewCampaign("Rappel", "Bonjour", notify.AudienceAll)
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	store.campaigns[c.ID] = *c

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+c.ID+"/run", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCampaignCreateInvalidAudience(t *testing.T) {
	h, _, _ := newTestHandler(t)
	body := strings.NewReader(`{"name":"Rappel","template":"Bonjour","audience":"everyone"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
