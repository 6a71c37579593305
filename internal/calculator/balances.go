package calculator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

// ComputeBalances folds every receipt of o into one net balance per person.
//
// A person's share of a receipt counts toward what they owe; the payer of a
// receipt is credited its full total. net = owed - paid, so positive means the
// person owes money and negative means they are owed. Every person on the
// outing gets a Balance, including zero ones, ordered by person ID.
//
// The balances sum to exactly zero by construction; if they do not, the
// result is discarded and an InternalConsistencyError is returned.
func (e *Engine) ComputeBalances(o *models.Outing) ([]models.Balance, error) {
	allocations, err := e.ComputeOutingAllocations(o)
	if err != nil {
		return nil, err
	}

	byPerson := make(map[string]*models.Balance, len(o.People))
	for _, p := range o.People {
		byPerson[p.ID] = &models.Balance{PersonID: p.ID}
	}

	for _, r := range o.Receipts {
		byPerson[r.PaidBy].Paid = byPerson[r.PaidBy].Paid.Add(r.Total)
		for _, share := range allocations[r.ID] {
			b := byPerson[share.PersonID]
			b.Owed = b.Owed.Add(share.Amount)
		}
	}

	balances := make([]models.Balance, 0, len(byPerson))
	var sum money.Money
	for _, b := range byPerson {
		b.Net = b.Owed.Sub(b.Paid)
		sum = sum.Add(b.Net)
		balances = append(balances, *b)
	}
	sortBalances(balances)

	if !sum.IsZero() {
		return nil, e.defect("balance-sum", fmt.Sprintf("balances of outing %s sum to %d", o.ID, sum), "outing_id", o.ID)
	}
	return balances, nil
}

// ApplyPayments returns a copy of balances with every paid transaction taken
// into account: the payer's debt shrinks and the receiver's credit shrinks.
// Unpaid transactions are ignored.
func (e *Engine) ApplyPayments(balances []models.Balance, txs []models.SettlementTransaction) ([]models.Balance, error) {
	out := slices.Clone(balances)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.PersonID] = i
	}

	for _, tx := range txs {
		if !tx.Paid {
			continue
		}
		from, okFrom := index[tx.FromPerson]
		to, okTo := index[tx.ToPerson]
		if !okFrom || !okTo {
			return nil, e.defect("payment-person", fmt.Sprintf("transaction %s references a person without a balance", tx.ID))
		}
		out[from].Net = out[from].Net.Sub(tx.Amount)
		out[to].Net = out[to].Net.Add(tx.Amount)
	}
	return out, nil
}

// OwingSummaries projects the unpaid transactions onto each person of o:
// what they still have to pay, what they are still owed, and to whom.
func OwingSummaries(o *models.Outing, txs []models.SettlementTransaction) []models.OwingSummary {
	summaries := make([]models.OwingSummary, len(o.People))
	index := make(map[string]int, len(o.People))
	for i, p := range o.People {
		index[p.ID] = i
		summaries[i] = models.OwingSummary{PersonID: p.ID, PersonName: p.Name, Breakdown: []models.OwingLine{}}
	}

	for _, tx := range txs {
		if tx.Paid {
			continue
		}
		if i, ok := index[tx.FromPerson]; ok {
			s := &summaries[i]
			s.TotalOwed = s.TotalOwed.Add(tx.Amount)
			s.Breakdown = append(s.Breakdown, models.OwingLine{
				ToPersonID:   tx.ToPerson,
				ToPersonName: o.PersonName(tx.ToPerson),
				Amount:       tx.Amount,
			})
		}
		if i, ok := index[tx.ToPerson]; ok {
			s := &summaries[i]
			s.TotalOwedTo = s.TotalOwedTo.Add(tx.Amount)
		}
	}

	for i := range summaries {
		summaries[i].NetAmount = summaries[i].TotalOwed.Sub(summaries[i].TotalOwedTo)
	}
	return summaries
}

func sortBalances(bs []models.Balance) {
	slices.SortFunc(bs, func(a, b models.Balance) int {
		return strings.Compare(a.PersonID, b.PersonID)
	})
}
