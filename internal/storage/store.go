// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/outlate/internal/models"
)

// ErrNotFound is wrapped by every lookup of a row that does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Create methods assign IDs to the entity and its children when they are
// empty and write them back into the argument.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Outings. GetOuting loads people and receipts in the order they were added.
	CreateOuting(ctx context.Context, outing *models.Outing) error
	GetOuting(ctx context.Context, outingID string) (*models.Outing, error)
	ListOutingsByCreator(ctx context.Context, userID string) ([]*models.Outing, error)
	SetOutingStatus(ctx context.Context, outingID string, status models.OutingStatus) error

	// People
	AddPerson(ctx context.Context, outingID string, person *models.Person) error

	// Receipts. UpdateReceipt replaces the receipt's items and included people.
	// Every receipt write also drops the outing's unpaid settlements.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error
	DeleteReceipt(ctx context.Context, outingID, receiptID string) error

	// Settlements.
	//
	// ReplaceSettlements drops every unpaid transaction of the outing and
	// stores txs in their place. Paid transactions are kept.
	ReplaceSettlements(ctx context.Context, outingID string, txs []models.SettlementTransaction) error
	ListSettlements(ctx context.Context, outingID string) ([]models.SettlementTransaction, error)
	// MarkSettlementPaid returns models.ErrAlreadyPaid for a paid transaction.
	MarkSettlementPaid(ctx context.Context, outingID, txID string, at time.Time) (*models.SettlementTransaction, error)

	// Close releases any resources held by the store.
	Close() error
}
