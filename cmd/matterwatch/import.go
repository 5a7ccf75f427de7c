package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/calloway/matterwatch/internal/importer"
	"github.com/calloway/matterwatch/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import invoices from e-billing CSV exports",
		Long: `Import legal invoices from CSV files exported by an e-billing system.

Required columns: matter_id, invoice_number, date, amount.
Optional columns: firm_name, partner_hours, associate_hours, paralegal_hours, other_hours.

Invoices already in the database are skipped by content hash, so re-importing
a file is always safe.

Examples:
  # Import a single export
  matterwatch import ~/Downloads/invoices_2025Q1.csv

  # Import everything from a directory
  matterwatch import ~/Downloads/ebilling/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, statErr := os.Stat(pattern); statErr == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("⚖️  Importing e-billing exports...",
		"file_count", len(allFiles),
		"dry_run", dryRun)

	// Parse all files first, deduplicating across files by hash
	var allInvoices []model.Invoice
	seen := make(map[string]bool)

	parser := importer.NewParser()
	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		invoices, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse CSV file", "file", filePath, "error", err)
			continue
		}

		added := 0
		for _, inv := range invoices {
			if seen[inv.Hash] {
				continue
			}
			seen[inv.Hash] = true
			allInvoices = append(allInvoices, inv)
			added++
		}
		slog.Info("Parsed file",
			"file", filepath.Base(filePath),
			"invoices", added)
	}

	if len(allInvoices) == 0 {
		return fmt.Errorf("no invoices found in %d file(s)", len(allFiles))
	}

	if dryRun {
		slog.Info("Dry run complete, nothing saved", "invoices", len(allInvoices))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	bar := progressbar.NewOptions(len(allInvoices),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Saving invoices...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(os.Stderr)
		}),
	)

	// Save in batches so the bar reflects actual progress
	const batchSize = 100
	saved := 0
	for start := 0; start < len(allInvoices); start += batchSize {
		end := start + batchSize
		if end > len(allInvoices) {
			end = len(allInvoices)
		}

		n, saveErr := store.SaveInvoices(ctx, allInvoices[start:end])
		if saveErr != nil {
			return fmt.Errorf("failed to save invoices: %w", saveErr)
		}
		saved += n
		_ = bar.Add(end - start)
	}

	slog.Info("✅ Import complete",
		"parsed", len(allInvoices),
		"saved", saved,
		"duplicates_skipped", len(allInvoices)-saved)

	return nil
}
