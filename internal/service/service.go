// Package service implements the Connect handlers of outlate. Handlers load
// state from storage, hand it to the calculator engine and persist what comes
// back; they hold no state of their own.
package service

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/outlate/internal/auth"
	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/middleware"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/storage"
	"github.com/mmynk/outlate/pkg/api/apiconnect"
)

// Mounter is satisfied by chi.Router.
type Mounter interface {
	Mount(pattern string, h http.Handler)
}

// Mount registers the three services on r with the given handler options.
func Mount(r Mounter, authSvc *AuthService, outings *OutingService, receipts *ReceiptService, opts ...connect.HandlerOption) {
	r.Mount(apiconnect.NewAuthServiceHandler(authSvc, opts...))
	r.Mount(apiconnect.NewOutingServiceHandler(outings, opts...))
	r.Mount(apiconnect.NewReceiptServiceHandler(receipts, opts...))
}

// loadOwned fetches an outing and checks that the caller created it.
func loadOwned(ctx context.Context, store storage.Store, outingID string) (*models.Outing, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	o, err := store.GetOuting(ctx, outingID)
	if err != nil {
		return nil, err
	}
	if o.CreatedBy != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("outing %s belongs to another user", outingID))
	}
	return o, nil
}

// ledger is an outing's money state as of now.
type ledger struct {
	balances     []models.Balance
	transactions []models.SettlementTransaction
	status       models.OutingStatus
}

// loadLedger computes balances, loads the settlement transactions and
// projects the outing status. o.Status is updated to the projection.
func loadLedger(ctx context.Context, store storage.Store, engine *calculator.Engine, o *models.Outing) (*ledger, error) {
	balances, err := engine.ComputeBalances(o)
	if err != nil {
		return nil, err
	}
	txs, err := store.ListSettlements(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Status = calculator.OutingStatus(o, balances, txs)
	return &ledger{balances: balances, transactions: txs, status: o.Status}, nil
}

func validationError(field, format string, args ...any) error {
	return &calculator.ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
