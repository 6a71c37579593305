// Package report renders an outing as Markdown: every receipt with its
// per-person shares, the balances, and the settlement plan.
package report

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
)

//go:embed templates/*.md
var templates embed.FS

// Report is everything the outing template shows.
type Report struct {
	Outing       *models.Outing
	Currency     string
	Total        money.Money
	Allocations  map[string][]models.PersonShare
	Balances     []models.Balance
	Transactions []models.SettlementTransaction
	Status       models.OutingStatus
}

// Build runs the engine over o. With no transactions the settlement plan is
// computed fresh from the balances.
func Build(engine *calculator.Engine, o *models.Outing, txs []models.SettlementTransaction, currency string) (*Report, error) {
	allocations, err := engine.ComputeOutingAllocations(o)
	if err != nil {
		return nil, err
	}
	balances, err := engine.ComputeBalances(o)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		if txs, err = engine.ComputeSettlements(o.ID, balances); err != nil {
			return nil, err
		}
	}

	var total money.Money
	for _, r := range o.Receipts {
		total = total.Add(r.Total)
	}
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return &Report{
		Outing:       o,
		Currency:     currency,
		Total:        total,
		Allocations:  allocations,
		Balances:     balances,
		Transactions: txs,
		Status:       calculator.OutingStatus(o, balances, txs),
	}, nil
}

// Markdown renders r.
func (r *Report) Markdown() (string, error) {
	funcs := template.FuncMap{
		"money":  func(m money.Money) string { return m.Display(r.Currency) },
		"name":   r.Outing.PersonName,
		"shares": func(receiptID string) []models.PersonShare { return r.Allocations[receiptID] },
	}

	tmpl, err := template.New("outing.md").Funcs(funcs).ParseFS(templates, "templates/outing.md")
	if err != nil {
		return "", fmt.Errorf("parse outing template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, r); err != nil {
		return "", fmt.Errorf("render outing %s: %w", r.Outing.ID, err)
	}
	return b.String(), nil
}
