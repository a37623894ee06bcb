package periods

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Meeting is a scheduled association meeting. A meeting belongs to a fiscal
// period by date containment only; there is no explicit foreign key.
type Meeting struct {
	ID      string
	Subject string
	Date    time.Time
}

// NewMeeting constructs a meeting with a fresh identity.
func NewMeeting(subject string, date time.Time) (*Meeting, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrEmptySubject
	}
	if date.IsZero() {
		return nil, ErrZeroDate
	}
	return &Meeting{
		ID:      uuid.NewString(),
		Subject: subject,
		Date:    date,
	}, nil
}

// InPeriod reports whether the meeting date falls within the period bounds.
func (m Meeting) InPeriod(p FiscalPeriod) bool {
	return p.Contains(m.Date)
}

// MeetingsInPeriod returns the meetings whose date falls within the period.
func MeetingsInPeriod(meetings []Meeting, p FiscalPeriod) []Meeting {
	result := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.InPeriod(p) {
			result = append(result, m)
		}
	}
	return result
}

// MeetingsOutsidePeriod returns the meetings whose date falls outside the
// period bounds. These are the calendar inconsistencies a treasurer fixes by
// moving the meeting or widening the exercise.
func MeetingsOutsidePeriod(meetings []Meeting, p FiscalPeriod) []Meeting {
	result := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if !m.InPeriod(p) {
			result = append(result, m)
		}
	}
	return result
}

// FindMeeting resolves a meeting by id.
func FindMeeting(meetings []Meeting, id string) (Meeting, bool) {
	if id == "" {
		return Meeting{}, false
	}
	for _, m := range meetings {
		if m.ID == id {
			return m, true
		}
	}
	return Meeting{}, false
}

// MeetingOutsidePeriod reports whether a simultaneously selected period and
// meeting form an inconsistent combination: the meeting resolves but its date
// is outside the selected period bounds. The combination is still filtered
// leniently; callers surface the flag to the user instead of rejecting it.
func MeetingOutsidePeriod(periodID, meetingID string, periods []FiscalPeriod, meetings []Meeting) bool {
	if periodID == "" || meetingID == "" {
		return false
	}
	period, ok := FindPeriod(periods, periodID)
	if !ok {
		return false
	}
	meeting, ok := FindMeeting(meetings, meetingID)
	if !ok {
		return false
	}
	return !meeting.InPeriod(period)
}
