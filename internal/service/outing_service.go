package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/outlate/internal/auth"
	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/middleware"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
	"github.com/mmynk/outlate/internal/rpc"
	"github.com/mmynk/outlate/internal/storage"
	"github.com/mmynk/outlate/pkg/api"
)

const dateLayout = time.DateOnly

// OutingService implements the Connect OutingService.
type OutingService struct {
	store  storage.Store
	engine *calculator.Engine
	logger *slog.Logger
	now    func() time.Time
}

// NewOutingService creates a new OutingService with the given storage backend.
func NewOutingService(store storage.Store, engine *calculator.Engine, logger *slog.Logger) *OutingService {
	return &OutingService{store: store, engine: engine, logger: logger, now: time.Now}
}

// CreateOuting creates a new outing owned by the caller.
func (s *OutingService) CreateOuting(ctx context.Context, req *connect.Request[api.CreateOutingRequest]) (*connect.Response[api.CreateOutingResponse], error) {
	s.logger.Info("CreateOuting request received",
		"name", req.Msg.Name,
		"people_count", len(req.Msg.People),
	)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	date := s.now().UTC().Truncate(24 * time.Hour)
	if req.Msg.Date != "" {
		d, err := time.Parse(dateLayout, req.Msg.Date)
		if err != nil {
			return nil, rpc.ToConnectError(validationError("date", "want YYYY-MM-DD, got %q", req.Msg.Date))
		}
		date = d
	}

	people := make([]models.Person, len(req.Msg.People))
	for i, p := range req.Msg.People {
		people[i] = models.Person{Name: strings.TrimSpace(p.Name), Color: p.Color}
	}
	if err := s.engine.Validator().ValidateNewOuting(req.Msg.Name, people); err != nil {
		s.logger.Warn("CreateOuting rejected", "error", err)
		return nil, rpc.ToConnectError(err)
	}

	outing := &models.Outing{
		Name:      strings.TrimSpace(req.Msg.Name),
		Date:      date,
		CreatedBy: userID,
		People:    people,
		Receipts:  []models.Receipt{},
	}
	if err := s.store.CreateOuting(ctx, outing); err != nil {
		s.logger.Error("CreateOuting failed", "error", err)
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Outing created", "outing_id", outing.ID)
	return connect.NewResponse(&api.CreateOutingResponse{Outing: outing}), nil
}

// GetOuting returns the outing with its projected status.
func (s *OutingService) GetOuting(ctx context.Context, req *connect.Request[api.GetOutingRequest]) (*connect.Response[api.GetOutingResponse], error) {
	s.logger.Info("GetOuting request received", "outing_id", req.Msg.OutingID)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		s.logger.Error("GetOuting failed", "outing_id", req.Msg.OutingID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	if _, err := loadLedger(ctx, s.store, s.engine, o); err != nil {
		s.logger.Error("GetOuting: failed to project status", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&api.GetOutingResponse{Outing: o}), nil
}

// ListOutings lists the caller's outings, most recent first.
func (s *OutingService) ListOutings(ctx context.Context, req *connect.Request[api.ListOutingsRequest]) (*connect.Response[api.ListOutingsResponse], error) {
	userID := middleware.GetUserID(ctx)
	s.logger.Info("ListOutings request received", "user_id", userID)

	outings, err := s.store.ListOutingsByCreator(ctx, userID)
	if err != nil {
		s.logger.Error("ListOutings failed", "error", err)
		return nil, rpc.ToConnectError(err)
	}

	summaries := make([]api.OutingSummary, 0, len(outings))
	for _, o := range outings {
		if _, err := loadLedger(ctx, s.store, s.engine, o); err != nil {
			s.logger.Error("ListOutings: failed to project status", "outing_id", o.ID, "error", err)
			return nil, rpc.ToConnectError(err)
		}
		var total money.Money
		for _, r := range o.Receipts {
			total = total.Add(r.Total)
		}
		summaries = append(summaries, api.OutingSummary{
			ID:           o.ID,
			Name:         o.Name,
			Date:         o.Date.Format(dateLayout),
			Status:       o.Status,
			PeopleCount:  len(o.People),
			ReceiptCount: len(o.Receipts),
			Total:        total,
		})
	}

	s.logger.Info("ListOutings successful", "count", len(summaries))
	return connect.NewResponse(&api.ListOutingsResponse{Outings: summaries}), nil
}

// AddPerson adds a participant to an outing that is not archived.
func (s *OutingService) AddPerson(ctx context.Context, req *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error) {
	s.logger.Info("AddPerson request received", "outing_id", req.Msg.OutingID, "name", req.Msg.Name)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if err := calculator.CheckMutable(o); err != nil {
		return nil, rpc.ToConnectError(err)
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, rpc.ToConnectError(validationError("name", "every person needs a name"))
	}
	if len(o.People) >= calculator.MaxPeoplePerOuting {
		return nil, rpc.ToConnectError(validationError("people", "an outing holds at most %d people", calculator.MaxPeoplePerOuting))
	}

	person := models.Person{Name: name, Color: req.Msg.Color}
	if err := s.store.AddPerson(ctx, o.ID, &person); err != nil {
		s.logger.Error("AddPerson failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Person added", "outing_id", o.ID, "person_id", person.ID)
	return connect.NewResponse(&api.AddPersonResponse{Person: person}), nil
}

// GetBalances returns the receipt balances, what is still outstanding after
// paid transactions, and each person's remaining obligations.
func (s *OutingService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	s.logger.Info("GetBalances request received", "outing_id", req.Msg.OutingID)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	l, err := loadLedger(ctx, s.store, s.engine, o)
	if err != nil {
		s.logger.Error("GetBalances failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	outstanding, err := s.engine.ApplyPayments(l.balances, l.transactions)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	for _, b := range l.balances {
		s.logger.Debug("Balance", "outing_id", o.ID, "person_id", b.PersonID, "net", b.Net.Cents())
	}
	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:    l.balances,
		Outstanding: outstanding,
		Summaries:   calculator.OwingSummaries(o, l.transactions),
	}), nil
}

// ComputeSettlements replaces the unpaid plan with a fresh one computed from
// the outstanding balances. Paid transactions are kept as history.
func (s *OutingService) ComputeSettlements(ctx context.Context, req *connect.Request[api.ComputeSettlementsRequest]) (*connect.Response[api.ComputeSettlementsResponse], error) {
	s.logger.Info("ComputeSettlements request received", "outing_id", req.Msg.OutingID)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if err := calculator.CheckMutable(o); err != nil {
		return nil, rpc.ToConnectError(err)
	}

	l, err := loadLedger(ctx, s.store, s.engine, o)
	if err != nil {
		s.logger.Error("ComputeSettlements: failed to load ledger", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	outstanding, err := s.engine.ApplyPayments(l.balances, l.transactions)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	plan, err := s.engine.ComputeSettlements(o.ID, outstanding)
	if err != nil {
		s.logger.Error("ComputeSettlements failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	if err := s.store.ReplaceSettlements(ctx, o.ID, plan); err != nil {
		s.logger.Error("ComputeSettlements: failed to store plan", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}

	txs, err := s.store.ListSettlements(ctx, o.ID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Settlement plan computed", "outing_id", o.ID, "transactions", len(plan))
	return connect.NewResponse(&api.ComputeSettlementsResponse{
		Transactions: txs,
		Status:       calculator.OutingStatus(o, l.balances, txs),
	}), nil
}

// ListSettlements returns the stored transactions without recomputing.
func (s *OutingService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	s.logger.Info("ListSettlements request received", "outing_id", req.Msg.OutingID)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	l, err := loadLedger(ctx, s.store, s.engine, o)
	if err != nil {
		s.logger.Error("ListSettlements failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{
		Transactions: l.transactions,
		Summaries:    calculator.OwingSummaries(o, l.transactions),
		Status:       l.status,
	}), nil
}

// MarkSettlementPaid records a payment made outside the system.
func (s *OutingService) MarkSettlementPaid(ctx context.Context, req *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error) {
	s.logger.Info("MarkSettlementPaid request received",
		"outing_id", req.Msg.OutingID,
		"transaction_id", req.Msg.TransactionID,
	)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if err := calculator.CheckMutable(o); err != nil {
		return nil, rpc.ToConnectError(err)
	}

	tx, err := s.store.MarkSettlementPaid(ctx, o.ID, req.Msg.TransactionID, s.now())
	if err != nil {
		s.logger.Warn("MarkSettlementPaid failed", "transaction_id", req.Msg.TransactionID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	l, err := loadLedger(ctx, s.store, s.engine, o)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	s.logger.Info("Settlement paid", "outing_id", o.ID, "transaction_id", tx.ID, "status", l.status)
	return connect.NewResponse(&api.MarkSettlementPaidResponse{Transaction: tx, Status: l.status}), nil
}

// ArchiveOuting latches a settled outing as archived.
func (s *OutingService) ArchiveOuting(ctx context.Context, req *connect.Request[api.ArchiveOutingRequest]) (*connect.Response[api.ArchiveOutingResponse], error) {
	s.logger.Info("ArchiveOuting request received", "outing_id", req.Msg.OutingID)

	o, err := loadOwned(ctx, s.store, req.Msg.OutingID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	balances, err := s.engine.ComputeBalances(o)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	txs, err := s.store.ListSettlements(ctx, o.ID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if err := calculator.CheckArchive(o, balances, txs); err != nil {
		s.logger.Warn("ArchiveOuting rejected", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	if err := s.store.SetOutingStatus(ctx, o.ID, models.StatusArchived); err != nil {
		s.logger.Error("ArchiveOuting failed", "outing_id", o.ID, "error", err)
		return nil, rpc.ToConnectError(err)
	}
	o.Status = models.StatusArchived

	s.logger.Info("Outing archived", "outing_id", o.ID)
	return connect.NewResponse(&api.ArchiveOutingResponse{Outing: o}), nil
}
