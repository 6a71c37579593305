package calculator

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

type party struct {
	id     string
	amount money.Money // always positive
}

// ComputeSettlements reduces balances to payer->payee transactions.
//
// Greedy two-pointer matching: debtors (net > 0) and creditors (net < 0, by
// magnitude) are each sorted by amount descending, ties by ascending person
// ID. The current debtor pays the current creditor min(remaining debt,
// remaining credit); whichever side reaches zero advances (both when both do).
// Every step zeroes at least one party, so N people with non-zero balances
// settle in at most N-1 transactions. The count is near-minimal, not
// guaranteed minimal.
//
// Returned transactions are unpaid and carry no ID; the caller assigns IDs when
// it persists them.
func (e *Engine) ComputeSettlements(outingID string, balances []models.Balance) ([]models.SettlementTransaction, error) {
	var (
		debtors, creditors []party
		sum                money.Money
	)
	for _, b := range balances {
		sum = sum.Add(b.Net)
		switch {
		case b.Net.IsPositive():
			debtors = append(debtors, party{id: b.PersonID, amount: b.Net})
		case b.Net.IsNegative():
			creditors = append(creditors, party{id: b.PersonID, amount: b.Net.Neg()})
		}
	}
	if !sum.IsZero() {
		return nil, e.defect("settlement-input", fmt.Sprintf("balances sum to %d", sum), "outing_id", outingID)
	}

	sortParties(debtors)
	sortParties(creditors)

	txs := []models.SettlementTransaction{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		amount := money.Min(d.amount, c.amount)
		txs = append(txs, models.SettlementTransaction{
			OutingID:   outingID,
			FromPerson: d.id,
			ToPerson:   c.id,
			Amount:     amount,
		})
		d.amount = d.amount.Sub(amount)
		c.amount = c.amount.Sub(amount)
		if d.amount.IsZero() {
			i++
		}
		if c.amount.IsZero() {
			j++
		}
	}

	if err := e.validator.ValidateSettlements(balances, txs); err != nil {
		ice, _ := err.(*InternalConsistencyError)
		if ice == nil {
			return nil, err
		}
		return nil, e.defect(ice.Check, ice.Detail, "outing_id", outingID)
	}
	e.metrics.SettlementComputed(len(txs))
	return txs, nil
}

func sortParties(ps []party) {
	slices.SortFunc(ps, func(a, b party) int {
		if c := cmp.Compare(b.amount, a.amount); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
}
