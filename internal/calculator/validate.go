package calculator

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

// Limits carried over from the outing form rules of the client application.
const (
	MinOutingNameLength  = 1
	MaxOutingNameLength  = 100
	MinPeoplePerOuting   = 2
	MaxPeoplePerOuting   = 50
	MaxReceiptsPerOuting = 20
)

// Validator checks engine inputs before allocation and engine outputs after
// settlement.
type Validator struct {
	// Tolerance is the largest accepted |total - (subtotal + tax + tip)|.
	// Zero demands exact receipts.
	Tolerance money.Money
}

// ValidateReceipt checks a receipt on its own, without outing context.
func (v Validator) ValidateReceipt(r *models.Receipt) error {
	id := r.ID

	amounts := []struct {
		field  string
		amount money.Money
	}{
		{"subtotal", r.Subtotal}, {"tax", r.Tax}, {"tip", r.Tip}, {"total", r.Total},
	}
	for _, a := range amounts {
		if a.amount.IsNegative() {
			return invalid(id, a.field, "must not be negative, got %d", a.amount)
		}
	}
	if r.PaidBy == "" {
		return invalid(id, "paidBy", "payer is required")
	}

	for i, item := range r.Items {
		if item.Price.IsNegative() {
			return invalid(id, itemField(i, "price"), "must not be negative, got %d", item.Price)
		}
		if item.Quantity < 1 {
			return invalid(id, itemField(i, "quantity"), "must be at least 1, got %d", item.Quantity)
		}
	}
	if len(r.Items) > 0 {
		var sum money.Money
		for i, item := range r.Items {
			extended, ok := item.Price.MulIntChecked(item.Quantity)
			if ok {
				sum, ok = sum.AddChecked(extended)
			}
			if !ok {
				return invalid(id, itemField(i, "price"), "price %d times quantity %d is out of range", item.Price, item.Quantity)
			}
		}
		if sum != r.Subtotal {
			return invalid(id, "subtotal", "items sum to %d but subtotal is %d", sum, r.Subtotal)
		}
	}
	if _, ok := money.SumChecked(r.Subtotal, r.Tax, r.Tip); !ok {
		return invalid(id, "total", "subtotal+tax+tip is out of range")
	}
	if adj := r.Adjustment(); adj.Abs() > v.Tolerance {
		return invalid(id, "total", "subtotal+tax+tip is off from total by %d, tolerance is %d", adj, v.Tolerance)
	}

	switch r.SplitMethod {
	case models.SplitEqual:
		if len(r.IncludedPeople) == 0 {
			return invalid(id, "includedPeople", "equal split needs at least one included person")
		}
		if dup, ok := firstDuplicate(r.IncludedPeople); ok {
			return invalid(id, "includedPeople", "person %s listed twice", dup)
		}
	case models.SplitByItem:
		if len(r.Items) == 0 {
			return invalid(id, "items", "by-item split needs at least one item")
		}
		for i, item := range r.Items {
			if len(item.AssignedTo) == 0 {
				return invalid(id, itemField(i, "assignedTo"), "item %q has no assignees", item.Name)
			}
			if dup, ok := firstDuplicate(item.AssignedTo); ok {
				return invalid(id, itemField(i, "assignedTo"), "person %s assigned twice", dup)
			}
		}
		if r.Subtotal.IsZero() && !money.Sum(r.Tax, r.Tip, r.Adjustment()).IsZero() {
			return invalid(id, "subtotal", "tax and tip cannot be apportioned over a zero subtotal")
		}
	default:
		return invalid(id, "splitMethod", "unknown split method %q", r.SplitMethod)
	}
	return nil
}

// ValidateOuting checks every receipt of o, that receipt IDs are present and
// unique, and that each person reference resolves to someone on the outing.
func (v Validator) ValidateOuting(o *models.Outing) error {
	people := make(map[string]bool, len(o.People))
	for _, p := range o.People {
		if p.ID == "" {
			return invalid("", "people", "person %q has no id", p.Name)
		}
		if people[p.ID] {
			return invalid("", "people", "person %s listed twice", p.ID)
		}
		people[p.ID] = true
	}

	receipts := make(map[string]bool, len(o.Receipts))
	var total money.Money
	for i := range o.Receipts {
		r := &o.Receipts[i]
		if r.ID == "" {
			return invalid("", "receipts", "receipt %d has no id", i)
		}
		if receipts[r.ID] {
			return invalid(r.ID, "receipts", "receipt %s listed twice", r.ID)
		}
		receipts[r.ID] = true
		if r.OutingID != "" && o.ID != "" && r.OutingID != o.ID {
			return invalid(r.ID, "outingId", "receipt belongs to outing %s, not %s", r.OutingID, o.ID)
		}
		if err := v.ValidateReceipt(r); err != nil {
			return err
		}
		var ok bool
		if total, ok = total.AddChecked(r.Total); !ok {
			return invalid(r.ID, "receipts", "receipt totals of the outing are out of range")
		}
		if !people[r.PaidBy] {
			return invalid(r.ID, "paidBy", "unknown person %s", r.PaidBy)
		}
		for _, pid := range r.IncludedPeople {
			if !people[pid] {
				return invalid(r.ID, "includedPeople", "unknown person %s", pid)
			}
		}
		for j, item := range r.Items {
			for _, pid := range item.AssignedTo {
				if !people[pid] {
					return invalid(r.ID, itemField(j, "assignedTo"), "unknown person %s", pid)
				}
			}
		}
	}
	return nil
}

// ValidateNewOuting applies the form rules for creating an outing.
func (v Validator) ValidateNewOuting(name string, people []models.Person) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinOutingNameLength || n > MaxOutingNameLength {
		return invalid("", "name", "must be %d to %d characters", MinOutingNameLength, MaxOutingNameLength)
	}
	if len(people) < MinPeoplePerOuting || len(people) > MaxPeoplePerOuting {
		return invalid("", "people", "an outing needs %d to %d people, got %d", MinPeoplePerOuting, MaxPeoplePerOuting, len(people))
	}
	for _, p := range people {
		if strings.TrimSpace(p.Name) == "" {
			return invalid("", "people", "every person needs a name")
		}
	}
	return nil
}

// ValidateSettlements checks the minimizer's post-conditions: positive
// amounts, no self-payments, the amounts add up to the total positive balance,
// applying them zeroes every balance, and there are at most N-1 of them.
func (v Validator) ValidateSettlements(balances []models.Balance, txs []models.SettlementTransaction) error {
	remaining := make(map[string]money.Money, len(balances))
	var positive money.Money
	nonZero := 0
	for _, b := range balances {
		remaining[b.PersonID] = remaining[b.PersonID].Add(b.Net)
		if b.Net.IsPositive() {
			positive = positive.Add(b.Net)
		}
		if !b.Net.IsZero() {
			nonZero++
		}
	}

	var paid money.Money
	for _, tx := range txs {
		if !tx.Amount.IsPositive() {
			return &InternalConsistencyError{Check: "settlement-amount", Detail: fmt.Sprintf("transaction %s->%s has non-positive amount %d", tx.FromPerson, tx.ToPerson, tx.Amount)}
		}
		if tx.FromPerson == tx.ToPerson {
			return &InternalConsistencyError{Check: "settlement-self", Detail: fmt.Sprintf("transaction from %s to itself", tx.FromPerson)}
		}
		remaining[tx.FromPerson] = remaining[tx.FromPerson].Sub(tx.Amount)
		remaining[tx.ToPerson] = remaining[tx.ToPerson].Add(tx.Amount)
		paid = paid.Add(tx.Amount)
	}

	if paid != positive {
		return &InternalConsistencyError{Check: "settlement-sum", Detail: fmt.Sprintf("transactions move %d but positive balances total %d", paid, positive)}
	}
	for _, pid := range slices.Sorted(maps.Keys(remaining)) {
		if left := remaining[pid]; !left.IsZero() {
			return &InternalConsistencyError{Check: "settlement-zero", Detail: fmt.Sprintf("person %s left with %d after settlement", pid, left)}
		}
	}
	if nonZero > 0 && len(txs) > nonZero-1 {
		return &InternalConsistencyError{Check: "settlement-count", Detail: fmt.Sprintf("%d transactions for %d non-zero balances", len(txs), nonZero)}
	}
	return nil
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}

func firstDuplicate(ids []string) (string, bool) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return id, true
		}
		seen[id] = true
	}
	return "", false
}
