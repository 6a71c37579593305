package models

import (
	"errors"
	"time"

	"github.com/mmynk/outlate/internal/money"
)

// ErrAlreadyPaid is returned when a paid transaction is marked paid again.
var ErrAlreadyPaid = errors.New("settlement transaction is already paid")

// Balance is a person's net position across all receipts of an outing.
// Net > 0 means the person owes money, Net < 0 means they are owed.
type Balance struct {
	PersonID string `json:"personId"`

	// Owed is the sum of the person's shares, Paid the sum of totals they fronted.
	Owed money.Money `json:"owed"`
	Paid money.Money `json:"paid"`
	Net  money.Money `json:"net"`
}

// SettlementTransaction is one recommended payment from a debtor to a creditor.
type SettlementTransaction struct {
	ID         string      `json:"id"`
	OutingID   string      `json:"outingId"`
	FromPerson string      `json:"fromPerson"`
	ToPerson   string      `json:"toPerson"`
	Amount     money.Money `json:"amount"`
	Paid       bool        `json:"paid"`
	PaidAt     *time.Time  `json:"paidAt,omitempty"`
}

// MarkPaid records the external payment fact. It is the only mutation a
// transaction ever sees after the minimizer creates it.
func (t *SettlementTransaction) MarkPaid(at time.Time) error {
	if t.Paid {
		return ErrAlreadyPaid
	}
	at = at.UTC()
	t.Paid = true
	t.PaidAt = &at
	return nil
}

// OwingLine is one entry of an OwingSummary breakdown.
type OwingLine struct {
	ToPersonID   string      `json:"toPersonId"`
	ToPersonName string      `json:"toPersonName"`
	Amount       money.Money `json:"amount"`
}

// OwingSummary is the per-person view of outstanding settlement transactions.
type OwingSummary struct {
	PersonID    string      `json:"personId"`
	PersonName  string      `json:"personName"`
	TotalOwed   money.Money `json:"totalOwed"`   // what they still have to pay
	TotalOwedTo money.Money `json:"totalOwedTo"` // what others still have to pay them
	NetAmount   money.Money `json:"netAmount"`   // positive = owes, negative = is owed
	Breakdown   []OwingLine `json:"breakdown"`
}
