package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/docstruct/docstruct/constants"
	"github.com/docstruct/docstruct/internal/common"
	"github.com/docstruct/docstruct/internal/export"
	"github.com/docstruct/docstruct/internal/extract"
	"github.com/docstruct/docstruct/internal/llm/groq"
	"github.com/docstruct/docstruct/internal/pipeline"
	"github.com/docstruct/docstruct/internal/repository"
)

// One-shot extraction: PDF in, workbook out.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	in := flag.String("in", "", "input PDF file")
	out := flag.String("out", constants.OutputFilename, "output XLSX file")
	flag.Parse()
	if *in == "" {
		logger.Error("usage", "cmd", "docstruct -in <doc.pdf> [-out <structured.xlsx>]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.ValidateForCLI(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		logger.Error("read input", "path", *in, "error", err)
		os.Exit(1)
	}

	// Run history is optional for the CLI; enable it by setting HISTORY_DB_PATH.
	var runs repository.RunRepository
	if os.Getenv("HISTORY_DB_PATH") != "" {
		db, err := repository.Open(cfg.History.DBPath)
		if err != nil {
			logger.Error("open run history", "error", err, "path", cfg.History.DBPath)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		runs = repository.NewRunRepository(db, logger)
	}

	client := groq.NewClient(groq.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	proc := pipeline.NewProcessor(extract.NewPDFExtractor(logger), client, export.NewService(logger), runs, logger)
	res, err := proc.Run(context.Background(), data, *in)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, res.XLSX, 0o644); err != nil {
		logger.Error("write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("done", "in", *in, "out", *out, "pages", res.Pages, "pairs", len(res.Pairs))
}
