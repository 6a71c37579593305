// Package api declares the request and response messages of the outlate RPC
// services. Messages are plain structs carried by the JSON codec; every money
// field is an integer count of cents.
package api

import (
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *models.User `json:"user"`
}

// Outings

// PersonInput names a participant to add; the server assigns the ID.
type PersonInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type CreateOutingRequest struct {
	Name string `json:"name"`
	// Date is a calendar date (YYYY-MM-DD). Empty means today.
	Date   string        `json:"date,omitempty"`
	People []PersonInput `json:"people"`
}

type CreateOutingResponse struct {
	Outing *models.Outing `json:"outing"`
}

type GetOutingRequest struct {
	OutingID string `json:"outingId"`
}

// GetOutingResponse carries the outing with its status projected from the
// current settlement plan.
type GetOutingResponse struct {
	Outing *models.Outing `json:"outing"`
}

type ListOutingsRequest struct{}

// OutingSummary is one row of the outing list.
type OutingSummary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Date         string              `json:"date"`
	Status       models.OutingStatus `json:"status"`
	PeopleCount  int                 `json:"peopleCount"`
	ReceiptCount int                 `json:"receiptCount"`
	Total        money.Money         `json:"total"`
}

type ListOutingsResponse struct {
	Outings []OutingSummary `json:"outings"`
}

type AddPersonRequest struct {
	OutingID string `json:"outingId"`
	PersonInput
}

type AddPersonResponse struct {
	Person models.Person `json:"person"`
}

type GetBalancesRequest struct {
	OutingID string `json:"outingId"`
}

type GetBalancesResponse struct {
	// Balances are computed from the receipts alone.
	Balances []models.Balance `json:"balances"`
	// Outstanding are the balances left after paid settlement transactions.
	Outstanding []models.Balance      `json:"outstanding"`
	Summaries   []models.OwingSummary `json:"summaries"`
}

type ComputeSettlementsRequest struct {
	OutingID string `json:"outingId"`
}

type ComputeSettlementsResponse struct {
	// Transactions lists paid history first, then the fresh unpaid plan.
	Transactions []models.SettlementTransaction `json:"transactions"`
	Status       models.OutingStatus            `json:"status"`
}

type ListSettlementsRequest struct {
	OutingID string `json:"outingId"`
}

type ListSettlementsResponse struct {
	Transactions []models.SettlementTransaction `json:"transactions"`
	Summaries    []models.OwingSummary          `json:"summaries"`
	Status       models.OutingStatus            `json:"status"`
}

type MarkSettlementPaidRequest struct {
	OutingID      string `json:"outingId"`
	TransactionID string `json:"transactionId"`
}

type MarkSettlementPaidResponse struct {
	Transaction *models.SettlementTransaction `json:"transaction"`
	Status      models.OutingStatus           `json:"status"`
}

type ArchiveOutingRequest struct {
	OutingID string `json:"outingId"`
}

type ArchiveOutingResponse struct {
	Outing *models.Outing `json:"outing"`
}

// Receipts

type AddReceiptRequest struct {
	OutingID string         `json:"outingId"`
	Receipt  models.Receipt `json:"receipt"`
}

type AddReceiptResponse struct {
	Receipt     *models.Receipt      `json:"receipt"`
	Allocations []models.PersonShare `json:"allocations"`
}

type UpdateReceiptRequest struct {
	OutingID string         `json:"outingId"`
	Receipt  models.Receipt `json:"receipt"`
}

type UpdateReceiptResponse struct {
	Receipt     *models.Receipt      `json:"receipt"`
	Allocations []models.PersonShare `json:"allocations"`
}

type DeleteReceiptRequest struct {
	OutingID  string `json:"outingId"`
	ReceiptID string `json:"receiptId"`
}

type DeleteReceiptResponse struct{}

type GetAllocationsRequest struct {
	OutingID string `json:"outingId"`
	// ReceiptID limits the result to one receipt. Empty means all receipts.
	ReceiptID string `json:"receiptId,omitempty"`
}

type GetAllocationsResponse struct {
	// Allocations maps receipt ID to its per-person shares.
	Allocations map[string][]models.PersonShare `json:"allocations"`
}

type ScanReceiptRequest struct {
	OutingID string `json:"outingId"`
	Image    []byte `json:"image"` // base64 in JSON
	MimeType string `json:"mimeType"`
}

// ScanReceiptResponse is a draft: items are unassigned and nothing is stored.
type ScanReceiptResponse struct {
	Receipt *models.Receipt `json:"receipt"`
}
