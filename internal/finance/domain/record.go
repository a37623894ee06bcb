package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind discriminates the concrete financial record types.
type Kind string

const (
	KindCotisation Kind = "cotisation"
	KindEpargne    Kind = "epargne"
	KindPret       Kind = "pret"
	KindSanction   Kind = "sanction"
	KindAide       Kind = "aide"
)

// Kinds lists every record kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindCotisation, KindEpargne, KindPret, KindSanction, KindAide}
}

// ParseKind validates a kind string.
func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindCotisation, KindEpargne, KindPret, KindSanction, KindAide:
		return Kind(value), true
	default:
		return "", false
	}
}

// Status is a per-kind record status. Each kind carries its own vocabulary.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusLate    Status = "late"
	StatusUnpaid  Status = "unpaid"

	StatusOngoing Status = "ongoing"
	StatusRepaid  Status = "repaid"
	StatusRenewed Status = "renewed"

	StatusApproved Status = "approved"

	StatusDeposited Status = "deposited"
	StatusWithdrawn Status = "withdrawn"
)

var statusesByKind = map[Kind][]Status{
	KindCotisation: {StatusPaid, StatusPending, StatusLate},
	KindEpargne:    {StatusDeposited, StatusWithdrawn},
	KindPret:       {StatusOngoing, StatusRepaid, StatusLate, StatusRenewed},
	KindSanction:   {StatusPaid, StatusUnpaid},
	KindAide:       {StatusPaid, StatusApproved, StatusPending},
}

// StatusesFor returns the status vocabulary of a kind.
func StatusesFor(kind Kind) []Status {
	return statusesByKind[kind]
}

// ValidStatus reports whether status belongs to the kind's vocabulary.
func ValidStatus(kind Kind, status Status) bool {
	for _, s := range statusesByKind[kind] {
		if s == status {
			return true
		}
	}
	return false
}

// Record generalizes cotisation, epargne, pret, sanction and aide rows. The
// filter/aggregate pipeline treats all five kinds uniformly; InterestRate is
// only meaningful for prets and is zero elsewhere.
type Record struct {
	ID           string
	Kind         Kind
	MemberID     string
	MemberName   string
	Category     string
	Amount       decimal.Decimal
	RecordDate   time.Time
	MeetingID    string
	Status       Status
	InterestRate decimal.Decimal
}

// NewRecord constructs a validated record with a fresh identity. Amounts are
// strictly positive at creation; the reporting pipeline itself stays lenient
// and treats whatever it is handed as-is.
func NewRecord(kind Kind, memberID, memberName, category string, amount decimal.Decimal, recordDate time.Time, meetingID string, status Status) (*Record, error) {
	if _, ok := ParseKind(string(kind)); !ok {
		return nil, ErrUnknownKind
	}
	if strings.TrimSpace(memberID) == "" {
		return nil, ErrEmptyMemberID
	}
	if recordDate.IsZero() {
		return nil, ErrZeroRecordDate
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if !ValidStatus(kind, status) {
		return nil, ErrInvalidStatus
	}
	return &Record{
		ID:         uuid.NewString(),
		Kind:       kind,
		MemberID:   memberID,
		MemberName: memberName,
		Category:   category,
		Amount:     amount,
		RecordDate: recordDate,
		MeetingID:  meetingID,
		Status:     status,
	}, nil
}
