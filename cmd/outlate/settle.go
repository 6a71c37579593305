package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/config"
	"github.com/mmynk/outlate/internal/idgen"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
	"github.com/mmynk/outlate/internal/report"
)

type settleCmd struct {
	file      string
	plain     bool
	currency  string
	tolerance int64

	stdout io.Writer
	stderr io.Writer
}

func newSettleCmd() *settleCmd {
	return &settleCmd{stdout: os.Stdout, stderr: os.Stderr}
}

func (*settleCmd) Name() string { return "settle" }
func (*settleCmd) Synopsis() string {
	return "prints shares, balances and who pays whom for an outing file"
}
func (*settleCmd) Usage() string {
	return `outlate settle -f <outing.json> [-plain] [-currency USD] [-tolerance cents]

  Reads an outing (people and receipts, amounts in integer cents), computes
  every receipt's allocation, the balances and a settlement plan, and prints
  them as a Markdown report. People must carry IDs; receipts and items
  without IDs are numbered in file order.

`
}

func (c *settleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Path to the outing JSON file.")
	f.BoolVar(&c.plain, "plain", false, "Print raw Markdown instead of rendering it for the terminal.")
	f.StringVar(&c.currency, "currency", "", "ISO currency used to display amounts (default CURRENCY or USD).")
	f.Int64Var(&c.tolerance, "tolerance", -1, "Accepted difference in cents between subtotal+tax+tip and total (default TOTAL_TOLERANCE_CENTS or 0).")
}

// defaults fills unset flags from the same .env and environment the server
// reads.
func (c *settleCmd) defaults() {
	cfg, err := config.Load()
	if err != nil {
		slog.Debug("Config not loaded, using built-in defaults", "error", err)
		cfg = &config.Config{Currency: money.DefaultCurrency}
	}
	if c.currency == "" {
		c.currency = cfg.Currency
	}
	if c.tolerance < 0 {
		c.tolerance = cfg.TotalTolerance.Cents()
	}
}

func (c *settleCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(c.stderr, "Error: -f is required.")
		return subcommands.ExitUsageError
	}

	c.defaults()

	outing, err := readOuting(c.file)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ids := idgen.NewCounter()
	assignIDs(outing, ids)

	engine := calculator.New(calculator.WithTolerance(money.Cents(c.tolerance)))
	r, err := report.Build(engine, outing, nil, c.currency)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for i := range r.Transactions {
		r.Transactions[i].ID = ids.NewID("settlement")
	}

	md, err := r.Markdown()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.plain {
		if md, err = renderTerminal(md); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	fmt.Fprint(c.stdout, md)
	return subcommands.ExitSuccess
}

func readOuting(path string) (*models.Outing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read outing: %w", err)
	}
	var o models.Outing
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode outing %s: %w", path, err)
	}
	return &o, nil
}

// assignIDs numbers the outing, its receipts and their items where the file
// left the ID empty. Generated IDs skip any ID the file already uses; IDs the
// file repeats are left for validation to report.
func assignIDs(o *models.Outing, ids idgen.Source) {
	taken := map[string]bool{o.ID: true}
	for _, r := range o.Receipts {
		taken[r.ID] = true
		for _, item := range r.Items {
			taken[item.ID] = true
		}
	}
	fresh := func(kind string) string {
		for {
			id := ids.NewID(kind)
			if !taken[id] {
				taken[id] = true
				return id
			}
		}
	}

	if o.ID == "" {
		o.ID = fresh("outing")
	}
	if o.Status == "" {
		o.Status = models.StatusActive
	}
	for i := range o.Receipts {
		r := &o.Receipts[i]
		if r.ID == "" {
			r.ID = fresh("receipt")
		}
		r.OutingID = o.ID
		for j := range r.Items {
			if r.Items[j].ID == "" {
				r.Items[j].ID = fresh("item")
			}
		}
	}
}

func renderTerminal(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}
