package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/mmynk/outlate/internal/ocr"
)

type scanCmd struct {
	image    string
	model    string
	outingID string

	stdout io.Writer
	stderr io.Writer
}

func newScanCmd() *scanCmd {
	return &scanCmd{stdout: os.Stdout, stderr: os.Stderr}
}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "reads a receipt photo into a draft receipt" }
func (*scanCmd) Usage() string {
	return `outlate scan -image <receipt.jpg> [-model gemini-2.5-flash] [-outing <id>]

  Sends the photo to Gemini and prints the draft receipt as JSON, amounts in
  cents. Items come back unassigned. Needs GEMINI_API_KEY.

`
}

func (c *scanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.image, "image", "", "Path to the receipt photo.")
	f.StringVar(&c.model, "model", ocr.DefaultModel, "Gemini model to use.")
	f.StringVar(&c.outingID, "outing", "", "Outing ID to put on the draft.")
}

func (c *scanCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.image == "" {
		fmt.Fprintln(c.stderr, "Error: -image is required.")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(c.image)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	extractor, err := ocr.NewGeminiExtractor(ctx, os.Getenv("GEMINI_API_KEY"), c.model)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return c.scan(ctx, extractor, data)
}

func (c *scanCmd) scan(ctx context.Context, extractor ocr.Extractor, data []byte) subcommands.ExitStatus {
	resp, err := extractor.Extract(ctx, data, imageType(c.image, data))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	draft, err := ocr.ToReceipt(resp, c.outingID)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(draft); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// imageType guesses the MIME type from the extension, then from the bytes.
func imageType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
