package notify

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the campaign lifecycle state.
type State string

const (
	StateDraft     State = "draft"
	StateScheduled State = "scheduled"
	StateSending   State = "sending"
	StateSent      State = "sent"
	StateFailed    State = "failed"
)

// Audience selects the recipients of a campaign.
type Audience string

const (
	AudienceAll    Audience = "all"
	AudienceActive Audience = "active"
	AudienceBureau Audience = "bureau"
)

// ParseAudience validates an audience string.
func ParseAudience(value string) (Audience, bool) {
	switch Audience(value) {
	case AudienceAll, AudienceActive, AudienceBureau:
		return Audience(value), true
	default:
		return "", false
	}
}

// transitions holds the allowed state machine edges.
var transitions = map[State][]State{
	StateDraft:     {StateScheduled},
	StateScheduled: {StateSending, StateDraft},
	StateSending:   {StateSent, StateFailed},
}

// Campaign is a notification campaign: one template sent to an audience.
type Campaign struct {
	ID          string
	Name        string
	Template    string
	State       State
	Audience    Audience
	ScheduledAt time.Time
	SentCount   int
	FailedCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCampaign constructs a draft campaign.
func NewCampaign(name, template string, audience Audience) (*Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(template) == "" {
		return nil, ErrEmptyTemplate
	}
	if _, ok := ParseAudience(string(audience)); !ok {
		return nil, ErrInvalidAudience
	}
	now := time.Now().UTC()
	return &Campaign{
		ID:        uuid.NewString(),
		Name:      name,
		Template:  template,
		State:     StateDraft,
		Audience:  audience,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanTransition reports whether the state machine allows the move.
func (c *Campaign) CanTransition(to State) bool {
	for _, next := range transitions[c.State] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the campaign to the next state, rejecting edges the
// lifecycle does not allow. Terminal states (sent, failed) never move again.
func (c *Campaign) Transition(to State) error {
	if !c.CanTransition(to) {
		return ErrInvalidTransition
	}
	c.State = to
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Schedule marks a draft campaign ready to send at the given time.
func (c *Campaign) Schedule(at time.Time) error {
	if err := c.Transition(StateScheduled); err != nil {
		return err
	}
	c.ScheduledAt = at
	return nil
}
