package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

func TestComputeBalances(t *testing.T) {
	balances, err := New().ComputeBalances(fridayNight())
	require.NoError(t, err)

	want := []models.Balance{
		{PersonID: "person-1", Owed: 5547, Paid: 7095, Net: -1548},
		{PersonID: "person-2", Owed: 4257, Paid: 9288, Net: -5031},
		{PersonID: "person-3", Owed: 4257, Paid: 0, Net: 4257},
		{PersonID: "person-4", Owed: 2322, Paid: 0, Net: 2322},
	}
	assert.Equal(t, want, balances)
}

func TestComputeBalancesIncludesIdlePeople(t *testing.T) {
	outing := fridayNight()
	outing.People = append(outing.People, models.Person{ID: "person-0", Name: "Riley Park"})

	balances, err := New().ComputeBalances(outing)
	require.NoError(t, err)
	require.Len(t, balances, 5)
	assert.Equal(t, models.Balance{PersonID: "person-0"}, balances[0])

	var sum money.Money
	for _, b := range balances {
		sum = sum.Add(b.Net)
	}
	assert.True(t, sum.IsZero())
}

func TestComputeBalancesWithoutReceipts(t *testing.T) {
	outing := fridayNight()
	outing.Receipts = nil

	balances, err := New().ComputeBalances(outing)
	require.NoError(t, err)
	require.Len(t, balances, 4)
	for _, b := range balances {
		assert.True(t, b.Net.IsZero())
	}
}

func TestComputeBalancesRejectsInvalidReceipt(t *testing.T) {
	outing := fridayNight()
	outing.Receipts[1].IncludedPeople = nil

	_, err := New().ComputeBalances(outing)
	require.ErrorIs(t, err, ErrValidation)
}

func TestComputeBalancesRejectsDuplicateReceiptIDs(t *testing.T) {
	outing := fridayNight()
	outing.Receipts[1].ID = outing.Receipts[0].ID

	_, err := New().ComputeBalances(outing)
	require.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrInternalConsistency)
}

func TestComputeBalancesIsIdempotent(t *testing.T) {
	engine := New()
	outing := fridayNight()

	first, err := engine.ComputeBalances(outing)
	require.NoError(t, err)
	second, err := engine.ComputeBalances(outing)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, fridayNight(), outing, "input is not mutated")
}

func TestApplyPayments(t *testing.T) {
	engine := New()
	balances, err := engine.ComputeBalances(fridayNight())
	require.NoError(t, err)

	txs := []models.SettlementTransaction{
		{ID: "tx-1", FromPerson: "person-3", ToPerson: "person-2", Amount: 4257, Paid: true},
		{ID: "tx-2", FromPerson: "person-4", ToPerson: "person-2", Amount: 774},
	}
	after, err := engine.ApplyPayments(balances, txs)
	require.NoError(t, err)

	nets := map[string]money.Money{}
	for _, b := range after {
		nets[b.PersonID] = b.Net
	}
	assert.EqualValues(t, 0, nets["person-3"])
	assert.EqualValues(t, -774, nets["person-2"])
	assert.EqualValues(t, 2322, nets["person-4"], "unpaid transactions are ignored")
	assert.EqualValues(t, -5031, balances[1].Net, "input must not be modified")

	_, err = engine.ApplyPayments(balances, []models.SettlementTransaction{
		{ID: "tx-x", FromPerson: "person-9", ToPerson: "person-2", Amount: 1, Paid: true},
	})
	require.ErrorIs(t, err, ErrInternalConsistency)
}

func TestOwingSummaries(t *testing.T) {
	outing := fridayNight()
	txs := []models.SettlementTransaction{
		{ID: "tx-1", FromPerson: "person-3", ToPerson: "person-2", Amount: 4257, Paid: true},
		{ID: "tx-2", FromPerson: "person-4", ToPerson: "person-2", Amount: 774},
		{ID: "tx-3", FromPerson: "person-4", ToPerson: "person-1", Amount: 1548},
	}

	summaries := OwingSummaries(outing, txs)
	require.Len(t, summaries, 4)

	alex, jordan, sam, morgan := summaries[0], summaries[1], summaries[2], summaries[3]
	assert.Equal(t, "Alex Johnson", alex.PersonName)
	assert.EqualValues(t, 1548, alex.TotalOwedTo)
	assert.EqualValues(t, -1548, alex.NetAmount)

	assert.EqualValues(t, 774, jordan.TotalOwedTo, "paid transactions drop out")
	assert.Empty(t, jordan.Breakdown)

	assert.Zero(t, sam.TotalOwed)
	assert.Zero(t, sam.NetAmount)

	assert.EqualValues(t, 2322, morgan.TotalOwed)
	assert.EqualValues(t, 2322, morgan.NetAmount)
	assert.Equal(t, []models.OwingLine{
		{ToPersonID: "person-2", ToPersonName: "Jordan Smith", Amount: 774},
		{ToPersonID: "person-1", ToPersonName: "Alex Johnson", Amount: 1548},
	}, morgan.Breakdown)
}
