package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docstruct/docstruct/internal/common"
	"github.com/docstruct/docstruct/internal/export"
	"github.com/docstruct/docstruct/internal/extract"
	"github.com/docstruct/docstruct/internal/llm"
	"github.com/docstruct/docstruct/internal/repository"
)

// Processor runs the linear extraction pipeline:
// PDF text -> prompt/LLM -> validated pairs -> XLSX bytes.
// One pass per user action, no retries, first error halts the run.
type Processor struct {
	Extractor extract.TextExtractor
	LLM       llm.PairExtractor
	Exporter  *export.Service
	Runs      repository.RunRepository // optional; nil disables history
	Log       *slog.Logger
}

func NewProcessor(ex extract.TextExtractor, pe llm.PairExtractor, xp *export.Service, runs repository.RunRepository, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{Extractor: ex, LLM: pe, Exporter: xp, Runs: runs, Log: log}
}

// Result is everything one successful run produces.
type Result struct {
	RunID uuid.UUID
	Text  string
	Pages int
	Pairs []llm.ExtractedPair
	XLSX  []byte
}

// Run extracts text from the PDF bytes and continues with RunFromText.
func (p *Processor) Run(ctx context.Context, data []byte, sourceName string) (Result, error) {
	res, err := p.Extractor.Extract(ctx, data)
	if err != nil {
		p.recordFailure(ctx, sourceName, 0, err)
		return Result{}, common.InputError("could not read PDF", err)
	}
	return p.RunFromText(ctx, res.Text, res.Pages, sourceName)
}

// RunFromText runs the LLM and export stages over already-extracted text
// (the daemon memoizes extraction per uploaded file). Empty text means the
// extraction failed or the document has no text layer; the run halts before
// any LLM call is made.
func (p *Processor) RunFromText(ctx context.Context, text string, pages int, sourceName string) (Result, error) {
	start := time.Now()

	if text == "" {
		err := common.InputError("PDF text content is empty", common.ErrInvalidInput)
		p.recordFailure(ctx, sourceName, pages, err)
		return Result{}, err
	}

	runID := p.recordStart(ctx, sourceName, pages)

	pairs, _, err := p.LLM.ExtractPairs(ctx, llm.ExtractRequest{DocumentText: text, SourceName: sourceName})
	if err != nil {
		p.finishFailure(ctx, runID, err)
		return Result{}, err
	}

	xlsx, err := p.Exporter.BuildXLSX(pairs)
	if err != nil {
		err = fmt.Errorf("build workbook: %w", err)
		p.finishFailure(ctx, runID, err)
		return Result{}, err
	}

	if p.Runs != nil && runID != uuid.Nil {
		if err := p.Runs.FinishSuccess(ctx, runID, len(pairs)); err != nil {
			p.Log.Warn("pipeline.history_update_failed", "run_id", runID, "error", err)
		}
	}

	p.Log.Info("pipeline.run.ok",
		"run_id", runID,
		"source", sourceName,
		"pages", pages,
		"pairs", len(pairs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{RunID: runID, Text: text, Pages: pages, Pairs: pairs, XLSX: xlsx}, nil
}

func (p *Processor) recordStart(ctx context.Context, sourceName string, pages int) uuid.UUID {
	if p.Runs == nil {
		return uuid.Nil
	}
	id, err := p.Runs.Start(ctx, sourceName, pages)
	if err != nil {
		p.Log.Warn("pipeline.history_start_failed", "source", sourceName, "error", err)
		return uuid.Nil
	}
	return id
}

func (p *Processor) recordFailure(ctx context.Context, sourceName string, pages int, cause error) {
	if p.Runs == nil {
		return
	}
	id, err := p.Runs.Start(ctx, sourceName, pages)
	if err != nil {
		p.Log.Warn("pipeline.history_start_failed", "source", sourceName, "error", err)
		return
	}
	p.finishFailure(ctx, id, cause)
}

func (p *Processor) finishFailure(ctx context.Context, runID uuid.UUID, cause error) {
	if p.Runs == nil || runID == uuid.Nil {
		return
	}
	if err := p.Runs.FinishFailure(ctx, runID, cause.Error()); err != nil {
		p.Log.Warn("pipeline.history_update_failed", "run_id", runID, "error", err)
	}
}
