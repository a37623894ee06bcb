package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	members "e2d/internal/members/domain"
	notify "e2d/internal/notify/domain"
)

type stubCampaignStore struct {
	campaigns map[string]notify.Campaign
}

func newStubCampaignStore(list ...notify.Campaign) *stubCampaignStore {
	store := &stubCampaignStore{campaigns: make(map[string]notify.Campaign)}
	for _, c := range list {
		store.campaigns[c.ID] = c
	}
	return store
}

func (s *stubCampaignStore) List(_ context.Context) ([]notify.Campaign, error) {
	out := make([]notify.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCampaignStore) Get(_ context.Context, id string) (*notify.Campaign, error) {
	c, ok := s.campaigns[id]
	if !ok {
		return nil, notify.ErrNotFound
	}
	return &c, nil
}

func (s *stubCampaignStore) Create(_ context.Context, c *notify.Campaign) error {
	s.campaigns[c.ID] = *c
	return nil
}

func (s *stubCampaignStore) Update(_ context.Context, c *notify.Campaign) error {
	if _, ok := s.campaigns[c.ID]; !ok {
		return notify.ErrNotFound
	}
	s.campaigns[c.ID] = *c
	return nil
}

type stubMemberReader struct {
	members []members.Member
}

func (s *stubMemberReader) List(_ context.Context, activeOnly bool) ([]members.Member, error) {
	if !activeOnly {
		return s.members, nil
	}
	var out []members.Member
	for _, m := range s.members {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubChannel struct {
	sent    []string
	failFor map[string]error
}

func (s *stubChannel) Send(_ context.Context, recipient Recipient, message string) error {
	if err := s.failFor[recipient.MemberID]; err != nil {
		return err
	}
	s.sent = append(s.sent, recipient.MemberID+": "+message)
	return nil
}

func member(id, first, last string, active bool) members.Member {
	return members.Member{ID: id, FirstName: first, LastName: last, Active: active}
}

func scheduledCampaign(t *testing.T, template string, audience notify.Audience) notify.Campaign {
	t.Helper()
	c, err := notify.NewCampaign("Rappel", template, audience)
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	if err := c.Schedule(time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	return *c
}

func newService(t *testing.T, store CampaignStore, reader MemberReader, channel Channel) *CampaignService {
	t.Helper()
	s, err := NewCampaignService(store, reader, channel, nil)
	if err != nil {
		t.Fatalf("NewCampaignService: %v", err)
	}
	return s
}

func TestRunRendersPerRecipient(t *testing.T) {
	campaign := scheduledCampaign(t, "Bonjour {name}", notify.AudienceActive)
	store := newStubCampaignStore(campaign)
	reader := &stubMemberReader{members: []members.Member{
		member("m-1", "Alice", "Mbarga", true),
		member("m-2", "Jean", "Fotso", false),
	}}
	channel := &stubChannel{}
	s := newService(t, store, reader, channel)

	result, err := s.Run(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != notify.StateSent {
		t.Fatalf("state = %s", result.State)
	}
	if result.Sent != 1 || result.Failed != 0 {
		t.Fatalf("sent/failed = %d/%d", result.Sent, result.Failed)
	}
	if len(channel.sent) != 1 || channel.sent[0] != "m-1: Bonjour Alice Mbarga" {
		t.Fatalf("sent = %v", channel.sent)
	}
	if got := store.campaigns[campaign.ID]; got.State != notify.StateSent || got.SentCount != 1 {
		t.Fatalf("stored campaign = %+v", got)
	}
}

func TestRunPartialFailureStillSent(t *testing.T) {
	campaign := scheduledCampaign(t, "Bonjour {name}", notify.AudienceAll)
	store := newStubCampaignStore(campaign)
	reader := &stubMemberReader{members: []members.Member{
		member("m-1", "Alice", "Mbarga", true),
		member("m-2", "Jean", "Fotso", true),
	}}
	channel := &stubChannel{failFor: map[string]error{"m-2": errors.New("boom")}}
	s := newService(t, store, reader, channel)

	result, err := s.Run(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != notify.StateSent || result.Sent != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestRunAllFailuresMarksFailed(t *testing.T) {
	campaign := scheduledCampaign(t, "Bonjour {name}", notify.AudienceAll)
	store := newStubCampaignStore(campaign)
	reader := &stubMemberReader{members: []members.Member{member("m-1", "Alice", "Mbarga", true)}}
	channel := &stubChannel{failFor: map[string]error{"m-1": errors.New("boom")}}
	s := newService(t, store, reader, channel)

	result, err := s.Run(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != notify.StateFailed {
		t.Fatalf("state = %s", result.State)
	}
	if got := store.campaigns[campaign.ID]; got.State != notify.StateFailed || got.FailedCount != 1 {
		t.Fatalf("stored campaign = %+v", got)
	}
}

func TestRunRejectsDraftCampaign(t *testing.T) {
	c, err := notify.NewCampaign("Rappel", "Bonjour", notify.AudienceAll)
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	store := newStubCampaignStore(*c)
	s := newService(t, store, &stubMemberReader{}, &stubChannel{})

	if _, err := s.Run(context.Background(), c.ID); !errors.Is(err, notify.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestRunDueSkipsFutureCampaigns(t *testing.T) {
	due := scheduledCampaign(t, "Bonjour {name}", notify.AudienceAll)
	future, err := notify.NewCampaign("Plus tard", "Bonjour", notify.AudienceAll)
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}
	if err := future.Schedule(time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	store := newStubCampaignStore(due, *future)
	reader := &stubMemberReader{members: []members.Member{member("m-1", "Alice", "Mbarga", true)}}
	channel := &stubChannel{}
	s := newService(t, store, reader, channel)

	s.RunDue(context.Background(), time.Now())

	if store.campaigns[due.ID].State != notify.StateSent {
		t.Fatalf("due campaign state = %s", store.campaigns[due.ID].State)
	}
	if store.campaigns[future.ID].State != notify.StateScheduled {
		t.Fatalf("future campaign state = %s", store.campaigns[future.ID].State)
	}
}

func TestWebhookChannelSend(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel := NewWebhookChannel(server.URL)
	err := channel.Send(context.Background(), Recipient{MemberID: "m-1", Name: "Alice Mbarga"}, "Bonjour Alice Mbarga")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if received.MemberID != "m-1" || !strings.Contains(received.Message, "Bonjour") {
		t.Fatalf("payload = %+v", received)
	}
}

func TestWebhookChannelNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	channel := NewWebhookChannel(server.URL)
	err := channel.Send(context.Background(), Recipient{MemberID: "m-1"}, "msg")
	if err == nil {
		t.Fatalf("expected error on 502")
	}
}
