package members

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Member is a registered association member.
type Member struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Bureau    string
	JoinedAt  time.Time
	Active    bool
}

// NewMember constructs an active member with a fresh identity.
func NewMember(firstName, lastName, phone, email, bureau string, joinedAt time.Time) (*Member, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, ErrEmptyName
	}
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}
	return &Member{
		ID:        uuid.NewString(),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Email:     email,
		Bureau:    bureau,
		JoinedAt:  joinedAt,
		Active:    true,
	}, nil
}

// FullName returns "First Last".
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// Deactivate marks the member inactive. Members are never deleted; the
// financial history must keep resolving their ids.
func (m *Member) Deactivate() {
	if m != nil {
		m.Active = false
	}
}
