package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: PDF bytes -> page-marked text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text"
	Duration time.Duration
	Warnings []string
}
