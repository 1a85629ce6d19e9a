package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/docstruct/docstruct/internal/extract"
)

// Debug helper: dump the page-marked text of a PDF to stdout.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "pdftext <file.pdf>")
		os.Exit(2)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read input", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	res, err := extract.NewPDFExtractor(logger).Extract(context.Background(), data)
	if err != nil {
		logger.Error("extract failed", "error", err)
		os.Exit(1)
	}
	for _, w := range res.Warnings {
		logger.Warn("extract warning", "warning", w)
	}
	fmt.Println(res.Text)
}
