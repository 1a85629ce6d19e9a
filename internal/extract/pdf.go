package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// EmptyPagePlaceholder replaces the text of a page whose text layer is empty.
const EmptyPagePlaceholder = "(No readable text on this page)"

// PDFExtractor reads the embedded text layer of a PDF. Scanned (image-only)
// pages have no text layer and come back as placeholders.
type PDFExtractor struct {
	log *slog.Logger
}

func NewPDFExtractor(log *slog.Logger) *PDFExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &PDFExtractor{log: log}
}

// Extract returns the concatenated per-page text, each page preceded by a
// "--- Page N ---" marker (1-based, document order). A document that cannot
// be parsed at all yields an error and an empty Text; callers must treat
// empty text as a failed extraction and halt.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (res TextExtractionResult, err error) {
	start := time.Now()
	res.Method = "pdf-text"

	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			res = TextExtractionResult{Method: "pdf-text", Duration: time.Since(start)}
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := ValidatePDF(data); err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("validate pdf: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("open pdf: %w", err)
	}

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, pageErr := p.GetPlainText(fonts)
		if pageErr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, pageErr))
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	res.Text = assemblePages(pages)
	res.Pages = numPages
	res.Duration = time.Since(start)

	e.log.Info("extract.pdf.ok",
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// assemblePages joins per-page text with 1-based page markers and trims the
// final result. Pages with no text get the placeholder.
func assemblePages(pages []string) string {
	var b strings.Builder
	for i, text := range pages {
		fmt.Fprintf(&b, "\n--- Page %d ---\n", i+1)
		if strings.TrimSpace(text) == "" {
			b.WriteString(EmptyPagePlaceholder)
		} else {
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}

// ValidatePDF runs a structural check over the raw bytes so corrupt uploads
// fail with a clear input error before page iteration.
func ValidatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("pdf structure: %w", err)
	}
	return nil
}
