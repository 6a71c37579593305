package calculator

import (
	"fmt"
	"slices"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

// ComputeAllocations divides one receipt into per-person shares.
//
// For an equal split the total is divided among the included people. For a
// by-item split every item's extended price is divided among its assignees,
// then tax, tip and any tolerated adjustment are spread over all people at
// once, in proportion to their item subtotals. A person who is on no item of
// a by-item receipt owes $0 for it and is left out of the result rather than
// listed with a zero share; ComputeBalances still reports every person of the
// outing.
//
// Shares are ordered by person ID and sum exactly to the receipt total.
func (e *Engine) ComputeAllocations(r *models.Receipt) ([]models.PersonShare, error) {
	if err := e.validator.ValidateReceipt(r); err != nil {
		return nil, e.validation(err)
	}
	return e.allocate(r)
}

// ComputeOutingAllocations allocates every receipt of o after checking that all
// person references resolve. Results are keyed by receipt ID.
func (e *Engine) ComputeOutingAllocations(o *models.Outing) (map[string][]models.PersonShare, error) {
	if err := e.validator.ValidateOuting(o); err != nil {
		return nil, e.validation(err)
	}
	out := make(map[string][]models.PersonShare, len(o.Receipts))
	for i := range o.Receipts {
		shares, err := e.allocate(&o.Receipts[i])
		if err != nil {
			return nil, err
		}
		out[o.Receipts[i].ID] = shares
	}
	return out, nil
}

// allocate assumes r is valid.
func (e *Engine) allocate(r *models.Receipt) ([]models.PersonShare, error) {
	var (
		shares []models.PersonShare
		err    error
	)
	switch r.SplitMethod {
	case models.SplitEqual:
		shares, err = allocateEqual(r)
	case models.SplitByItem:
		shares, err = allocateByItem(r)
	default:
		err = fmt.Errorf("unknown split method %q", r.SplitMethod)
	}
	if err != nil {
		// Validated input must always distribute; anything else is a defect.
		return nil, e.defect("allocation", err.Error(), "receipt_id", r.ID)
	}

	var sum money.Money
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	if sum != r.Total {
		return nil, e.defect("allocation-sum", fmt.Sprintf("shares sum to %d, receipt total is %d", sum, r.Total), "receipt_id", r.ID)
	}
	e.metrics.Allocated(string(r.SplitMethod))
	return shares, nil
}

func allocateEqual(r *models.Receipt) ([]models.PersonShare, error) {
	people := slices.Sorted(slices.Values(r.IncludedPeople))

	amounts, err := money.Split(r.Total, people)
	if err != nil {
		return nil, err
	}
	subtotals, err := money.Split(r.Subtotal, people)
	if err != nil {
		return nil, err
	}
	taxes, err := money.Split(r.Tax, people)
	if err != nil {
		return nil, err
	}
	tips, err := money.Split(r.Tip, people)
	if err != nil {
		return nil, err
	}

	shares := make([]models.PersonShare, len(people))
	for i, pid := range people {
		shares[i] = models.PersonShare{
			ReceiptID: r.ID,
			PersonID:  pid,
			Amount:    amounts[i],
			Subtotal:  subtotals[i],
			Tax:       taxes[i],
			Tip:       tips[i],
			// Absorbs any receipt-level adjustment and the cent of rounding
			// between dividing the total and dividing its parts.
			Adjustment: amounts[i].Sub(money.Sum(subtotals[i], taxes[i], tips[i])),
		}
	}
	return shares, nil
}

func allocateByItem(r *models.Receipt) ([]models.PersonShare, error) {
	subtotals := make(map[string]money.Money)
	lines := make(map[string][]models.PersonItem)

	for _, item := range r.Items {
		parts, err := money.Split(item.Extended(), item.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Name, err)
		}
		for i, pid := range item.AssignedTo {
			subtotals[pid] = subtotals[pid].Add(parts[i])
			lines[pid] = append(lines[pid], models.PersonItem{ItemID: item.ID, Name: item.Name, Amount: parts[i]})
		}
	}

	people := make([]string, 0, len(subtotals))
	for pid := range subtotals {
		people = append(people, pid)
	}
	slices.Sort(people)

	weights := make([]money.Recipient, len(people))
	for i, pid := range people {
		weights[i] = money.Recipient{Key: pid, Weight: subtotals[pid].Cents()}
	}

	taxes, err := money.Distribute(r.Tax, weights)
	if err != nil {
		return nil, fmt.Errorf("tax: %w", err)
	}
	tips, err := money.Distribute(r.Tip, weights)
	if err != nil {
		return nil, fmt.Errorf("tip: %w", err)
	}
	adjustments, err := money.DistributeSigned(r.Adjustment(), weights)
	if err != nil {
		return nil, fmt.Errorf("adjustment: %w", err)
	}

	shares := make([]models.PersonShare, len(people))
	for i, pid := range people {
		sub := subtotals[pid]
		shares[i] = models.PersonShare{
			ReceiptID:  r.ID,
			PersonID:   pid,
			Amount:     money.Sum(sub, taxes[i], tips[i], adjustments[i]),
			Subtotal:   sub,
			Tax:        taxes[i],
			Tip:        tips[i],
			Adjustment: adjustments[i],
			Items:      lines[pid],
		}
	}
	return shares, nil
}
