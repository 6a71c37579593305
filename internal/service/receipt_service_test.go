package service

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
	"github.com/mmynk/outlate/internal/rpc"
	"github.com/mmynk/outlate/pkg/api"
)

func TestAddReceiptValidationDetail(t *testing.T) {
	env := setupTestServer(t, nil)
	outing, p := env.friday(t)

	tests := []struct {
		name   string
		mutate func(r *models.Receipt)
		field  string
	}{
		{"unassigned item", func(r *models.Receipt) { r.Items[2].AssignedTo = nil }, "items[2].assignedTo"},
		{"unknown payer", func(r *models.Receipt) { r.PaidBy = "person-999" }, "paidBy"},
		{"stranger assigned", func(r *models.Receipt) { r.Items[0].AssignedTo = []string{"person-999"} }, "items[0].assignedTo"},
		{"wrong total", func(r *models.Receipt) { r.Total = 7000 }, "total"},
		{"negative tip", func(r *models.Receipt) { r.Tip = -1 }, "tip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := luigis(p)
			tt.mutate(&r)
			_, err := env.receipts.AddReceipt(context.Background(), connect.NewRequest(&api.AddReceiptRequest{
				OutingID: outing.ID,
				Receipt:  r,
			}))
			requireCode(t, connect.CodeInvalidArgument, err)
			ve, ok := rpc.ValidationDetail(err)
			require.True(t, ok, "expected a validation detail")
			assert.Equal(t, tt.field, ve.Field)
			assert.NotEmpty(t, ve.Reason)
		})
	}

	got, err := env.outings.GetOuting(context.Background(), connect.NewRequest(&api.GetOutingRequest{OutingID: outing.ID}))
	require.NoError(t, err)
	assert.Empty(t, got.Msg.Outing.Receipts, "rejected receipts are not stored")
}

func TestUpdateAndDeleteReceipt(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	outing, p := env.friday(t)
	added := env.addReceipt(t, outing.ID, luigis(p))

	updated := *added.Receipt
	updated.Items = []models.ReceiptItem{
		{Name: "Family Pizza", Price: 3000, Quantity: 1, AssignedTo: []string{p["Alex"], p["Jordan"], p["Sam"]}},
	}
	updated.Subtotal, updated.Tax, updated.Tip, updated.Total = 3000, 0, 0, 3000

	resp, err := env.receipts.UpdateReceipt(ctx, connect.NewRequest(&api.UpdateReceiptRequest{
		OutingID: outing.ID,
		Receipt:  updated,
	}))
	require.NoError(t, err)
	assert.Equal(t, added.Receipt.ID, resp.Msg.Receipt.ID)
	assert.Equal(t, added.Receipt.ProcessedAt, resp.Msg.Receipt.ProcessedAt)
	require.Len(t, resp.Msg.Allocations, 3)
	for _, s := range resp.Msg.Allocations {
		assert.Equal(t, money.Cents(1000), s.Amount)
	}

	allocs, err := env.receipts.GetAllocations(ctx, connect.NewRequest(&api.GetAllocationsRequest{
		OutingID:  outing.ID,
		ReceiptID: added.Receipt.ID,
	}))
	require.NoError(t, err)
	assert.Equal(t, resp.Msg.Allocations, allocs.Msg.Allocations[added.Receipt.ID])

	missing := updated
	missing.ID = "receipt-missing"
	_, err = env.receipts.UpdateReceipt(ctx, connect.NewRequest(&api.UpdateReceiptRequest{OutingID: outing.ID, Receipt: missing}))
	requireCode(t, connect.CodeNotFound, err)

	_, err = env.receipts.DeleteReceipt(ctx, connect.NewRequest(&api.DeleteReceiptRequest{OutingID: outing.ID, ReceiptID: added.Receipt.ID}))
	require.NoError(t, err)
	_, err = env.receipts.DeleteReceipt(ctx, connect.NewRequest(&api.DeleteReceiptRequest{OutingID: outing.ID, ReceiptID: added.Receipt.ID}))
	requireCode(t, connect.CodeNotFound, err)

	all, err := env.receipts.GetAllocations(ctx, connect.NewRequest(&api.GetAllocationsRequest{OutingID: outing.ID}))
	require.NoError(t, err)
	assert.Empty(t, all.Msg.Allocations)
}

func TestReceiptEditsDropUnpaidPlan(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()
	outing, p := env.friday(t)
	added := env.addReceipt(t, outing.ID, luigis(p))

	plan, err := env.outings.ComputeSettlements(ctx, connect.NewRequest(&api.ComputeSettlementsRequest{OutingID: outing.ID}))
	require.NoError(t, err)
	require.Len(t, plan.Msg.Transactions, 2)
	stale := plan.Msg.Transactions[0]

	updated := *added.Receipt
	updated.Items = []models.ReceiptItem{
		{Name: "Family Pizza", Price: 3000, Quantity: 1, AssignedTo: []string{p["Alex"], p["Jordan"], p["Sam"]}},
	}
	updated.Subtotal, updated.Tax, updated.Tip, updated.Total = 3000, 0, 0, 3000
	_, err = env.receipts.UpdateReceipt(ctx, connect.NewRequest(&api.UpdateReceiptRequest{OutingID: outing.ID, Receipt: updated}))
	require.NoError(t, err)

	listed, err := env.outings.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{OutingID: outing.ID}))
	require.NoError(t, err)
	assert.Empty(t, listed.Msg.Transactions, "plan for the old receipt is gone")
	_, err = env.outings.MarkSettlementPaid(ctx, connect.NewRequest(&api.MarkSettlementPaidRequest{OutingID: outing.ID, TransactionID: stale.ID}))
	requireCode(t, connect.CodeNotFound, err)

	plan, err = env.outings.ComputeSettlements(ctx, connect.NewRequest(&api.ComputeSettlementsRequest{OutingID: outing.ID}))
	require.NoError(t, err)
	require.Len(t, plan.Msg.Transactions, 2)
	paid, unpaid := plan.Msg.Transactions[0], plan.Msg.Transactions[1]
	assert.Equal(t, money.Cents(1000), paid.Amount)
	_, err = env.outings.MarkSettlementPaid(ctx, connect.NewRequest(&api.MarkSettlementPaidRequest{OutingID: outing.ID, TransactionID: paid.ID}))
	require.NoError(t, err)

	_, err = env.receipts.DeleteReceipt(ctx, connect.NewRequest(&api.DeleteReceiptRequest{OutingID: outing.ID, ReceiptID: added.Receipt.ID}))
	require.NoError(t, err)

	listed, err = env.outings.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{OutingID: outing.ID}))
	require.NoError(t, err)
	require.Len(t, listed.Msg.Transactions, 1, "paid history stays")
	assert.Equal(t, paid.ID, listed.Msg.Transactions[0].ID)
	assert.True(t, listed.Msg.Transactions[0].Paid)
	for _, s := range listed.Msg.Summaries {
		assert.True(t, s.TotalOwed.IsZero(), "%s owes nothing unpaid", s.PersonID)
	}
	_, err = env.outings.MarkSettlementPaid(ctx, connect.NewRequest(&api.MarkSettlementPaidRequest{OutingID: outing.ID, TransactionID: unpaid.ID}))
	requireCode(t, connect.CodeNotFound, err)
}

func TestGetAllocationsForOuting(t *testing.T) {
	env := setupTestServer(t, nil)
	outing, p := env.friday(t)
	pizza := env.addReceipt(t, outing.ID, luigis(p))
	bar := env.addReceipt(t, outing.ID, nightOwl(p))

	resp, err := env.receipts.GetAllocations(context.Background(), connect.NewRequest(&api.GetAllocationsRequest{OutingID: outing.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Allocations, 2)

	for id, want := range map[string]money.Money{pizza.Receipt.ID: 7095, bar.Receipt.ID: 9288} {
		var sum money.Money
		for _, s := range resp.Msg.Allocations[id] {
			sum = sum.Add(s.Amount)
		}
		assert.Equal(t, want, sum, "shares of %s add up to its total", id)
	}
}

type fakeExtractor struct {
	resp *models.OCRResponse
	err  error
}

func (f fakeExtractor) Extract(context.Context, []byte, string) (*models.OCRResponse, error) {
	return f.resp, f.err
}

func TestScanReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		env := setupTestServer(t, nil)
		outing, _ := env.friday(t)
		_, err := env.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{
			OutingID: outing.ID,
			Image:    []byte{0xff, 0xd8},
		}))
		requireCode(t, connect.CodeUnimplemented, err)
	})

	t.Run("draft", func(t *testing.T) {
		env := setupTestServer(t, fakeExtractor{resp: &models.OCRResponse{
			VendorName: "The Night Owl Bar",
			Items: []models.OCRItem{
				{Name: "Whiskey Sour", Price: 14.00, Quantity: 2},
				{Name: "Nachos", Price: 16.00, Quantity: 1},
			},
			Subtotal: 44.00,
			Tax:      3.96,
			Total:    47.96,
		}})
		outing, _ := env.friday(t)

		resp, err := env.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{
			OutingID: outing.ID,
			Image:    []byte{0xff, 0xd8},
			MimeType: "image/jpeg",
		}))
		require.NoError(t, err)
		draft := resp.Msg.Receipt
		assert.Empty(t, draft.ID)
		assert.Equal(t, outing.ID, draft.OutingID)
		assert.Equal(t, models.SplitByItem, draft.SplitMethod)
		require.Len(t, draft.Items, 2)
		assert.Equal(t, money.Cents(1400), draft.Items[0].Price)
		assert.Equal(t, money.Cents(4796), draft.Total)

		got, err := env.outings.GetOuting(ctx, connect.NewRequest(&api.GetOutingRequest{OutingID: outing.ID}))
		require.NoError(t, err)
		assert.Empty(t, got.Msg.Outing.Receipts, "scanning stores nothing")
	})

	t.Run("extractor failure", func(t *testing.T) {
		env := setupTestServer(t, fakeExtractor{err: errors.New("model unavailable")})
		outing, _ := env.friday(t)
		_, err := env.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{
			OutingID: outing.ID,
			Image:    []byte{1},
		}))
		requireCode(t, connect.CodeInternal, err)
	})
}
