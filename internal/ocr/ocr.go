// Package ocr turns receipt photos into draft receipts.
//
// Extraction is delegated to a multimodal model. What comes back is a
// models.OCRResponse in decimal major units; ToReceipt converts it into a
// Receipt in cents exactly once. Drafts carry no assignees and are never
// stored by this package.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

var (
	// ErrEmptyImage is returned when there is nothing to scan.
	ErrEmptyImage = errors.New("receipt image is empty")
	// ErrNoItems is returned when the model read no line items.
	ErrNoItems = errors.New("no items found on receipt")
)

// Extractor reads a receipt image.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*models.OCRResponse, error)
}

// ToReceipt builds a draft by-item receipt for outingID from an extraction.
// Quantities below 1 become 1. A missing subtotal is taken from the items and
// a missing total from subtotal+tax+tip.
func ToReceipt(resp *models.OCRResponse, outingID string) (*models.Receipt, error) {
	if resp == nil || len(resp.Items) == 0 {
		return nil, ErrNoItems
	}

	r := &models.Receipt{
		OutingID:    outingID,
		VendorName:  strings.TrimSpace(resp.VendorName),
		Items:       make([]models.ReceiptItem, 0, len(resp.Items)),
		Subtotal:    money.FromFloat(resp.Subtotal),
		Tax:         money.FromFloat(resp.Tax),
		Tip:         money.FromFloat(resp.Tip),
		Total:       money.FromFloat(resp.Total),
		SplitMethod: models.SplitByItem,
	}
	for i, it := range resp.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			name = fmt.Sprintf("Item %d", i+1)
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		r.Items = append(r.Items, models.ReceiptItem{
			Name:       name,
			Price:      money.FromFloat(it.Price),
			Quantity:   qty,
			AssignedTo: []string{},
		})
	}

	if r.Subtotal.IsZero() {
		r.Subtotal = r.ItemsTotal()
	}
	if r.Total.IsZero() {
		r.Total = money.Sum(r.Subtotal, r.Tax, r.Tip)
	}
	return r, nil
}
