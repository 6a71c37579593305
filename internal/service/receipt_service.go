package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"connectrpc.com/connect"

	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/ocr"
	"github.com/mmynk/outlate/internal/rpc"
	"github.com/mmynk/outlate/internal/storage"
	"github.com/mmynk/outlate/pkg/api"
)

// ReceiptService implements the Connect ReceiptService.
type ReceiptService struct {
	store     storage.Store
	engine    *calculator.Engine
	extractor ocr.Extractor
	logger    *slog.Logger
}

// NewReceiptService creates a ReceiptService. extractor may be nil, in which
// case ScanReceipt answers CodeUnimplemented.
func NewReceiptService(store storage.Store, engine *calculator.Engine, extractor ocr.Extractor, logger *slog.Logger) *ReceiptService {
	return &ReceiptService{store: store, engine: engine, extractor: extractor, logger: logger}
}

// AddReceipt validates a receipt against its outing, stores it and returns
// its allocations.
func (s *ReceiptService) AddReceipt(ctx context.Context, req *connect.Request[api.AddReceiptRequest]) (*connect.Response[api.AddReceiptResponse], error) {
	s.logger.Info("AddReceipt request received",
		"outing_id", req.Msg.OutingID,
		"vendor", req.Msg.Receipt.VendorName,
		"items_count", len(req.Msg.Receipt.Items),
	)

	o, err := s.mutableOuting(ctx, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if len(o.Receipts) >= calculator.MaxReceiptsPerOuting {
		return nil, rpc.ToConnectError(validationError("receipts", "an outing holds at most %d receipts", calculator.MaxReceiptsPerOuting))
	}

	receipt := req.Msg.Receipt
	receipt.ID = ""
	receipt.OutingID = o.ID
	for i := range receipt.Items {
		receipt.Items[i].ID = ""
	}

	pending := receipt
	pending.ID = pendingReceiptID
	candidate := *o
	candidate.Receipts = append(slices.Clone(o.Receipts), pending)
	if err := s.check(&candidate); err != nil {
		var ve *calculator.ValidationError
		if errors.As(err, &ve) && ve.ReceiptID == pendingReceiptID {
			ve.ReceiptID = ""
		}
		return nil, rpc.ToConnectError(err)
	}

	if err := s.store.CreateReceipt(ctx, &receipt); err != nil {
		s.logger.Error("AddReceipt failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}

	shares, err := s.engine.ComputeAllocations(&receipt)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Receipt added", "outing_id", o.ID, "receipt_id", receipt.ID, "total", receipt.Total.Cents())
	return connect.NewResponse(&api.AddReceiptResponse{Receipt: &receipt, Allocations: shares}), nil
}

// UpdateReceipt replaces a receipt wholesale.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, req *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error) {
	s.logger.Info("UpdateReceipt request received",
		"outing_id", req.Msg.OutingID,
		"receipt_id", req.Msg.Receipt.ID,
	)

	o, err := s.mutableOuting(ctx, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	existing, ok := o.Receipt(req.Msg.Receipt.ID)
	if !ok {
		return nil, rpc.ToConnectError(fmt.Errorf("receipt %s: %w", req.Msg.Receipt.ID, storage.ErrNotFound))
	}

	receipt := req.Msg.Receipt
	receipt.OutingID = o.ID
	receipt.ProcessedAt = existing.ProcessedAt

	candidate := *o
	candidate.Receipts = slices.Clone(o.Receipts)
	for i := range candidate.Receipts {
		if candidate.Receipts[i].ID == receipt.ID {
			candidate.Receipts[i] = receipt
		}
	}
	if err := s.check(&candidate); err != nil {
		return nil, rpc.ToConnectError(err)
	}

	if err := s.store.UpdateReceipt(ctx, &receipt); err != nil {
		s.logger.Error("UpdateReceipt failed", "receipt_id", receipt.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}

	shares, err := s.engine.ComputeAllocations(&receipt)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Receipt updated", "outing_id", o.ID, "receipt_id", receipt.ID)
	return connect.NewResponse(&api.UpdateReceiptResponse{Receipt: &receipt, Allocations: shares}), nil
}

// DeleteReceipt removes a receipt from an outing that is not archived.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, req *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error) {
	s.logger.Info("DeleteReceipt request received", "outing_id", req.Msg.OutingID, "receipt_id", req.Msg.ReceiptID)

	o, err := s.mutableOuting(ctx, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if err := s.store.DeleteReceipt(ctx, o.ID, req.Msg.ReceiptID); err != nil {
		s.logger.Error("DeleteReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Receipt deleted", "outing_id", o.ID, "receipt_id", req.Msg.ReceiptID)
	return connect.NewResponse(&api.DeleteReceiptResponse{}), nil
}

// GetAllocations returns per-person shares for one receipt or all of them.
func (s *ReceiptService) GetAllocations(ctx context.Context, req *connect.Request[api.GetAllocationsRequest]) (*connect.Response[api.GetAllocationsResponse], error) {
	s.logger.Info("GetAllocations request received", "outing_id", req.Msg.OutingID, "receipt_id", req.Msg.ReceiptID)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	if req.Msg.ReceiptID != "" {
		r, ok := o.Receipt(req.Msg.ReceiptID)
		if !ok {
			return nil, rpc.ToConnectError(fmt.Errorf("receipt %s: %w", req.Msg.ReceiptID, storage.ErrNotFound))
		}
		shares, err := s.engine.ComputeAllocations(r)
		if err != nil {
			s.logger.Error("GetAllocations failed", "receipt_id", r.ID, "error", err)
			return nil, rpc.ToConnectError(err)
		}
		return connect.NewResponse(&api.GetAllocationsResponse{
			Allocations: map[string][]models.PersonShare{r.ID: shares},
		}), nil
	}

	allocations, err := s.engine.ComputeOutingAllocations(o)
	if err != nil {
		s.logger.Error("GetAllocations failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&api.GetAllocationsResponse{Allocations: allocations}), nil
}

// ScanReceipt extracts a draft receipt from a photo. Nothing is stored.
func (s *ReceiptService) ScanReceipt(ctx context.Context, req *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error) {
	s.logger.Info("ScanReceipt request received",
		"outing_id", req.Msg.OutingID,
		"mime_type", req.Msg.MimeType,
		"bytes", len(req.Msg.Image),
	)

	if s.extractor == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("receipt scanning is not configured"))
	}
	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	extracted, err := s.extractor.Extract(ctx, req.Msg.Image, req.Msg.MimeType)
	if err != nil {
		s.logger.Error("ScanReceipt: extraction failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	draft, err := ocr.ToReceipt(extracted, o.ID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Receipt scanned", "outing_id", o.ID, "items_count", len(draft.Items))
	return connect.NewResponse(&api.ScanReceiptResponse{Receipt: draft}), nil
}

// pendingReceiptID stands in for the ID the store has not assigned yet. Neither
// ID source can produce it.
const pendingReceiptID = "pending-receipt"

func (s *ReceiptService) mutableOuting(ctx context.Context, outingID string) (*models.Outing, error) {
	o, err := loadOwned(ctx, s.store, outingID)
	if err != nil {
		return nil, err
	}
	if err := calculator.CheckMutable(o); err != nil {
		return nil, err
	}
	return o, nil
}

// check runs the full balance pipeline over the outing as it would be after
// the change, so nothing is stored that the engine cannot settle.
func (s *ReceiptService) check(candidate *models.Outing) error {
	if _, err := s.engine.ComputeBalances(candidate); err != nil {
		s.logger.Warn("Receipt rejected", "outing_id", candidate.ID, "error", err)
		return err
	}
	return nil
}
