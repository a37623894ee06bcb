package application

import (
	"context"
	"errors"
	"log"
	"time"

	members "e2d/internal/members/domain"
	notify "e2d/internal/notify/domain"
	"e2d/internal/observability/metrics"
)

// Recipient is one resolved campaign delivery target.
type Recipient struct {
	MemberID string
	Name     string
	Phone    string
	Email    string
}

// Channel delivers one rendered message to one recipient.
type Channel interface {
	Send(ctx context.Context, recipient Recipient, message string) error
}

// CampaignStore persists campaigns.
type CampaignStore interface {
	List(ctx context.Context) ([]notify.Campaign, error)
	Get(ctx context.Context, id string) (*notify.Campaign, error)
	Create(ctx context.Context, c *notify.Campaign) error
	Update(ctx context.Context, c *notify.Campaign) error
}

// MemberReader resolves the campaign audience from the member registry.
type MemberReader interface {
	List(ctx context.Context, activeOnly bool) ([]members.Member, error)
}

// CampaignService runs notification campaigns.
type CampaignService struct {
	store   CampaignStore
	members MemberReader
	channel Channel
	logger  *log.Logger
}

// NewCampaignService constructs a campaign service.
func NewCampaignService(store CampaignStore, memberReader MemberReader, channel Channel, logger *log.Logger) (*CampaignService, error) {
	if store == nil {
		return nil, errors.New("campaign service: nil store")
	}
	if memberReader == nil {
		return nil, errors.New("campaign service: nil member reader")
	}
	if channel == nil {
		return nil, errors.New("campaign service: nil channel")
	}
	return &CampaignService{store: store, members: memberReader, channel: channel, logger: logger}, nil
}

// RunResult summarizes one campaign run.
type RunResult struct {
	CampaignID string
	State      notify.State
	Sent       int
	Failed     int
}

// Run executes one scheduled campaign: renders the template per recipient and
// delivers through the channel. The campaign ends sent when at least one
// delivery succeeded and failed only when every delivery failed. An empty
// audience counts as sent; there was nothing to deliver.
func (s *CampaignService) Run(ctx context.Context, campaignID string) (RunResult, error) {
	campaign, err := s.store.Get(ctx, campaignID)
	if err != nil {
		return RunResult{}, err
	}
	if err := campaign.Transition(notify.StateSending); err != nil {
		return RunResult{}, err
	}
	if err := s.store.Update(ctx, campaign); err != nil {
		return RunResult{}, err
	}

	recipients, err := s.resolveAudience(ctx, campaign.Audience)
	if err != nil {
		s.fail(ctx, campaign)
		metrics.IncCampaignRun(false)
		return RunResult{}, err
	}

	sent, failed := 0, 0
	for _, recipient := range recipients {
		message := notify.RenderTemplate(campaign.Template, templateVars(recipient))
		if err := s.channel.Send(ctx, recipient, message); err != nil {
			failed++
			s.logf("campaign send failed: campaign=%s member=%s err=%v", campaign.ID, recipient.MemberID, err)
			continue
		}
		sent++
	}
	metrics.AddCampaignSends(true, sent)
	metrics.AddCampaignSends(false, failed)

	final := notify.StateSent
	if len(recipients) > 0 && sent == 0 {
		final = notify.StateFailed
	}
	campaign.SentCount = sent
	campaign.FailedCount = failed
	if err := campaign.Transition(final); err != nil {
		return RunResult{}, err
	}
	if err := s.store.Update(ctx, campaign); err != nil {
		return RunResult{}, err
	}
	metrics.IncCampaignRun(final == notify.StateSent)
	return RunResult{CampaignID: campaign.ID, State: final, Sent: sent, Failed: failed}, nil
}

// RunDue runs every scheduled campaign whose scheduled time has passed.
func (s *CampaignService) RunDue(ctx context.Context, now time.Time) {
	campaigns, err := s.store.List(ctx)
	if err != nil {
		s.logf("campaign list failed: %v", err)
		return
	}
	for _, campaign := range campaigns {
		if campaign.State != notify.StateScheduled {
			continue
		}
		if campaign.ScheduledAt.After(now) {
			continue
		}
		if _, err := s.Run(ctx, campaign.ID); err != nil {
			s.logf("campaign run failed: campaign=%s err=%v", campaign.ID, err)
		}
	}
}

func (s *CampaignService) resolveAudience(ctx context.Context, audience notify.Audience) ([]Recipient, error) {
	activeOnly := audience != notify.AudienceAll
	list, err := s.members.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	recipients := make([]Recipient, 0, len(list))
	for _, m := range list {
		if audience == notify.AudienceBureau && m.Bureau == "" {
			continue
		}
		recipients = append(recipients, Recipient{
			MemberID: m.ID,
			Name:     m.FullName(),
			Phone:    m.Phone,
			Email:    m.Email,
		})
	}
	return recipients, nil
}

func templateVars(r Recipient) map[string]string {
	return map[string]string{
		"name":  r.Name,
		"phone": r.Phone,
		"email": r.Email,
	}
}

func (s *CampaignService) fail(ctx context.Context, campaign *notify.Campaign) {
	if err := campaign.Transition(notify.StateFailed); err != nil {
		return
	}
	if err := s.store.Update(ctx, campaign); err != nil {
		s.logf("campaign state update failed: campaign=%s err=%v", campaign.ID, err)
	}
}

func (s *CampaignService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
