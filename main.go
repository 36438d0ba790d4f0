package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-tabulator/internal/api"
	"github.com/insightdelivered/statement-tabulator/internal/config"
	"github.com/insightdelivered/statement-tabulator/internal/extractor"
	"github.com/insightdelivered/statement-tabulator/internal/hints"
	"github.com/insightdelivered/statement-tabulator/internal/pipeline"
	"github.com/insightdelivered/statement-tabulator/internal/writer"
)

const version = "1.0.0"

func main() {
	institutionFlag := flag.String("institution", "", "Institution hint name (auto-detected if omitted)")
	outputFlag := flag.String("output", "", "Output file path (defaults to input filename with the format extension)")
	formatFlag := flag.String("format", "csv", "Output format: csv or xlsx")
	configFlag := flag.String("config", "", "Optional YAML config file")
	serveFlag := flag.String("serve", "", "Run the HTTP API on this address (e.g. :8080) instead of converting files")
	metadataFlag := flag.Bool("metadata", true, "Include account metadata header rows in CSV output")
	traceFlag := flag.Bool("trace", false, "Log the per-row trace")
	verboseFlag := flag.Bool("verbose", false, "Enable debug logging")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Statement Tabulator
by Insight Delivered (QEA AutoLens)

Converts bank statement PDFs into validated transaction tables without
per-bank templates: columns, rows and balances are inferred from the
document's own geometry and checked against the balance chain.

Usage:
  statement-tabulator [flags] <input.pdf> [input2.pdf ...]
  statement-tabulator -serve :8080

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert with automatic detection
  statement-tabulator statement.pdf

  # Force an institution hint and write XLSX
  statement-tabulator -institution=hsbc -format=xlsx statement.pdf

  # Convert several files
  statement-tabulator jan.pdf feb.pdf mar.pdf

  # Run the HTTP API
  statement-tabulator -serve :8080

Known institutions: %s
`, strings.Join(hints.Names(), ", "))
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-tabulator v%s\n", version)
		return
	}

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg, log)

	if *serveFlag != "" {
		serve(*serveFlag, p, log)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	opts := pipeline.Options{Institution: *institutionFlag, Trace: *traceFlag}
	for _, inputPath := range flag.Args() {
		// An explicit -output only applies to a single input.
		outPath := ""
		if flag.NArg() == 1 {
			outPath = *outputFlag
		}
		if err := processFile(p, inputPath, outPath, *formatFlag, *metadataFlag, opts, log); err != nil {
			log.Error("conversion failed", "file", inputPath, "err", err)
			os.Exit(1)
		}
	}
}

func processFile(p *pipeline.Pipeline, inputPath, outputPath, format string, metadata bool, opts pipeline.Options, log *slog.Logger) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	log.Info("processing", "file", inputPath)

	tokens, err := extractor.ExtractTokens(inputPath)
	if err != nil {
		return fmt.Errorf("pdf extraction failed: %w", err)
	}
	log.Info("extracted tokens", "count", len(tokens))

	res, err := p.Process(context.Background(), tokens, opts)
	if err != nil {
		return err
	}

	txns := res.Transactions()
	if len(txns) == 0 {
		log.Warn("no transactions found; the document may not contain a recognizable table")
	}
	if res.Diagnostics.LowConfidence {
		log.Warn("low-confidence detection; review the output",
			"strategy", res.Diagnostics.Strategy)
	}
	if opts.Trace {
		for _, tr := range res.Diagnostics.RowTrace {
			log.Debug("row", "page", tr.Page, "kind", tr.Kind, "text", tr.Text)
		}
	}

	if outputPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = base + "." + format
	}

	switch format {
	case "csv":
		w := &writer.CSVWriter{IncludeMetadata: metadata}
		if err := w.WriteToFile(outputPath, res); err != nil {
			return fmt.Errorf("csv write failed: %w", err)
		}
	case "xlsx":
		w := &writer.XLSXWriter{}
		if err := w.WriteToFile(outputPath, res); err != nil {
			return fmt.Errorf("xlsx write failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q, use csv or xlsx", format)
	}

	log.Info("done",
		"output", outputPath,
		"transactions", len(txns),
		"segments", len(res.Segments),
		"institution", res.Diagnostics.Institution)
	return nil
}

func serve(addr string, p *pipeline.Pipeline, log *slog.Logger) {
	app := fiber.New(fiber.Config{
		AppName:   "statement-tabulator v" + version,
		BodyLimit: 32 << 20,
	})

	h := &api.Handler{Pipeline: p, Log: log}
	h.Register(app)

	log.Info("starting http api", "addr", addr)
	if err := app.Listen(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
