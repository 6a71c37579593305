package models

import (
	"fmt"

	"github.com/mmynk/outlate/internal/money"
)

// SplitMethod is the policy used to divide a receipt's cost.
type SplitMethod string

const (
	// SplitEqual divides the total evenly among IncludedPeople.
	SplitEqual SplitMethod = "equal"
	// SplitByItem divides each item among its assignees and spreads tax and
	// tip in proportion to each person's item subtotal.
	SplitByItem SplitMethod = "by-item"
)

// ParseSplitMethod converts a stored or wire value into a SplitMethod.
func ParseSplitMethod(v string) (SplitMethod, error) {
	switch m := SplitMethod(v); m {
	case SplitEqual, SplitByItem:
		return m, nil
	}
	return "", fmt.Errorf("unknown split method %q", v)
}

// ReceiptItem is one line of a receipt.
type ReceiptItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    money.Money `json:"price"`
	Quantity int64       `json:"quantity"`

	// AssignedTo lists the person IDs sharing this item, in display order.
	// Required for by-item receipts.
	AssignedTo []string `json:"assignedTo"`
}

// Extended returns price * quantity.
func (i ReceiptItem) Extended() money.Money {
	return i.Price.MulInt(i.Quantity)
}

// Receipt is one itemized bill paid by a single person on the outing's behalf.
type Receipt struct {
	ID         string        `json:"id"`
	OutingID   string        `json:"outingId"`
	VendorName string        `json:"vendorName,omitempty"`
	ImageURL   string        `json:"imageUrl,omitempty"`
	Items      []ReceiptItem `json:"items"`
	Subtotal   money.Money   `json:"subtotal"`
	Tax        money.Money   `json:"tax"`
	Tip        money.Money   `json:"tip"`
	Total      money.Money   `json:"total"`

	// PaidBy is the person who fronted the total.
	PaidBy      string      `json:"paidBy"`
	SplitMethod SplitMethod `json:"splitMethod"`

	// IncludedPeople is only meaningful for SplitEqual.
	IncludedPeople []string `json:"includedPeople,omitempty"`

	ProcessedAt int64 `json:"processedAt,omitempty"`
}

// ItemsTotal returns the sum of every item's extended price.
func (r *Receipt) ItemsTotal() money.Money {
	var sum money.Money
	for _, item := range r.Items {
		sum = sum.Add(item.Extended())
	}
	return sum
}

// Adjustment returns total - (subtotal + tax + tip): fees or discounts the
// receipt does not itemize. Zero for a well-formed receipt.
func (r *Receipt) Adjustment() money.Money {
	return r.Total.Sub(money.Sum(r.Subtotal, r.Tax, r.Tip))
}

// PersonItem is one person's portion of a single receipt item.
type PersonItem struct {
	ItemID string      `json:"itemId"`
	Name   string      `json:"name"`
	Amount money.Money `json:"amount"`
}

// PersonShare is what one person owes toward one receipt.
// The shares of a receipt always sum exactly to its Total.
type PersonShare struct {
	ReceiptID string      `json:"receiptId"`
	PersonID  string      `json:"personId"`
	Amount    money.Money `json:"amount"`

	// Breakdown of Amount. Subtotal+Tax+Tip+Adjustment == Amount.
	Subtotal   money.Money  `json:"subtotal"`
	Tax        money.Money  `json:"tax"`
	Tip        money.Money  `json:"tip"`
	Adjustment money.Money  `json:"adjustment"`
	Items      []PersonItem `json:"items,omitempty"`
}

// OCRItem is a line extracted from a receipt image.
type OCRItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// OCRResponse is what the receipt-capture collaborator produces. Amounts are
// decimal major units as read from the image; they are converted to Money
// exactly once, when the caller builds a Receipt.
type OCRResponse struct {
	VendorName string    `json:"vendorName"`
	Items      []OCRItem `json:"items"`
	Subtotal   float64   `json:"subtotal"`
	Tax        float64   `json:"tax"`
	Tip        float64   `json:"tip"`
	Total      float64   `json:"total"`
}
