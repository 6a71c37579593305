package calculator

import (
	"fmt"

	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

// OutingStatus derives the lifecycle status of o from its payment facts.
//
// Archived is the only latched state. Otherwise the outing is settled once it
// has at least one receipt, every settlement transaction is paid, and the
// paid transactions zero every balance (so an outing whose plan has not been
// computed yet stays active). Before that it is active.
func OutingStatus(o *models.Outing, balances []models.Balance, txs []models.SettlementTransaction) models.OutingStatus {
	if o.Status == models.StatusArchived {
		return models.StatusArchived
	}
	if len(o.Receipts) == 0 {
		return models.StatusActive
	}

	outstanding := make(map[string]money.Money, len(balances))
	for _, b := range balances {
		outstanding[b.PersonID] = b.Net
	}
	for _, tx := range txs {
		if !tx.Paid {
			return models.StatusActive
		}
		outstanding[tx.FromPerson] = outstanding[tx.FromPerson].Sub(tx.Amount)
		outstanding[tx.ToPerson] = outstanding[tx.ToPerson].Add(tx.Amount)
	}
	for _, net := range outstanding {
		if !net.IsZero() {
			return models.StatusActive
		}
	}
	return models.StatusSettled
}

// CheckMutable rejects changes to receipts, people or settlements of an
// archived outing.
func CheckMutable(o *models.Outing) error {
	if o.Status == models.StatusArchived {
		return fmt.Errorf("outing %s: %w", o.ID, ErrOutingArchived)
	}
	return nil
}

// CheckArchive allows archiving only a settled outing.
func CheckArchive(o *models.Outing, balances []models.Balance, txs []models.SettlementTransaction) error {
	if err := CheckMutable(o); err != nil {
		return err
	}
	if status := OutingStatus(o, balances, txs); status != models.StatusSettled {
		return invalid("", "status", "only a settled outing can be archived, outing %s is %s", o.ID, status)
	}
	return nil
}
