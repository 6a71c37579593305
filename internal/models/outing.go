package models

import (
	"fmt"
	"time"
)

// OutingStatus is the lifecycle position of an outing.
// Transitions are one-way: active -> settled -> archived.
type OutingStatus string

const (
	StatusActive   OutingStatus = "active"
	StatusSettled  OutingStatus = "settled"
	StatusArchived OutingStatus = "archived"
)

func (s OutingStatus) rank() int {
	switch s {
	case StatusActive:
		return 0
	case StatusSettled:
		return 1
	case StatusArchived:
		return 2
	}
	return -1
}

// Valid reports whether s is a known status.
func (s OutingStatus) Valid() bool { return s.rank() >= 0 }

// CanTransition reports whether moving from s to next respects the one-way order.
// Staying in place is allowed, except that nothing leaves archived.
func (s OutingStatus) CanTransition(next OutingStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// ParseOutingStatus converts a stored or wire value into an OutingStatus.
func ParseOutingStatus(v string) (OutingStatus, error) {
	s := OutingStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown outing status %q", v)
	}
	return s, nil
}

// Person is a participant of an outing. Immutable once created.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Color is a display hint chosen by the client.
	Color string `json:"color,omitempty"`
}

// Outing is a group event with shared expenses.
type Outing struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"createdBy"`
	People    []Person  `json:"people"`
	Receipts  []Receipt `json:"receipts"`

	// Status is the latched status. Only StatusArchived is authoritative when
	// stored; settled is a projection over settlement transactions and is
	// recomputed on read (see calculator.OutingStatus).
	Status OutingStatus `json:"status"`

	CreatedAt int64 `json:"createdAt"`
}

// HasPerson reports whether personID belongs to the outing.
func (o *Outing) HasPerson(personID string) bool {
	for _, p := range o.People {
		if p.ID == personID {
			return true
		}
	}
	return false
}

// PersonName returns the display name for personID, or the ID itself when unknown.
func (o *Outing) PersonName(personID string) string {
	for _, p := range o.People {
		if p.ID == personID {
			return p.Name
		}
	}
	return personID
}

// Receipt returns the receipt with the given ID.
func (o *Outing) Receipt(receiptID string) (*Receipt, bool) {
	for i := range o.Receipts {
		if o.Receipts[i].ID == receiptID {
			return &o.Receipts[i], true
		}
	}
	return nil, false
}
