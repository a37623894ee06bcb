package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewRecordValidation(t *testing.T) {
	valid := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(1000)

	cases := []struct {
		name     string
		kind     Kind
		memberID string
		amount   decimal.Decimal
		date     time.Time
		status   Status
		wantErr  error
	}{
		{"valid cotisation", KindCotisation, "m1", amount, valid, StatusPaid, nil},
		{"valid pret", KindPret, "m1", amount, valid, StatusOngoing, nil},
		{"unknown kind", Kind("tontine"), "m1", amount, valid, StatusPaid, ErrUnknownKind},
		{"empty member", KindCotisation, " ", amount, valid, StatusPaid, ErrEmptyMemberID},
		{"zero date", KindCotisation, "m1", amount, time.Time{}, StatusPaid, ErrZeroRecordDate},
		{"zero amount", KindCotisation, "m1", decimal.Zero, valid, StatusPaid, ErrNonPositiveAmount},
		{"negative amount", KindCotisation, "m1", decimal.NewFromInt(-5), valid, StatusPaid, ErrNonPositiveAmount},
		{"status from wrong vocabulary", KindCotisation, "m1", amount, valid, StatusRepaid, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRecord(tc.kind, tc.memberID, "Awa Diallo", "Mensuelle", tc.amount, tc.date, "", tc.status)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && r.ID == "" {
				t.Fatal("expected generated id")
			}
		})
	}
}

func TestStatusVocabularies(t *testing.T) {
	if !ValidStatus(KindPret, StatusRenewed) {
		t.Error("renewed should be valid for pret")
	}
	if ValidStatus(KindEpargne, StatusLate) {
		t.Error("late should not be valid for epargne")
	}
	if ValidStatus(Kind("unknown"), StatusPaid) {
		t.Error("unknown kind has no statuses")
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		if _, ok := ParseKind(string(kind)); !ok {
			t.Errorf("%s should parse", kind)
		}
	}
	if _, ok := ParseKind("reunion"); ok {
		t.Error("reunion is not a record kind")
	}
}
