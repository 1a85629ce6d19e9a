package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docstruct/docstruct/internal/llm"
)

// SheetName is the single worksheet holding the extracted pairs.
const SheetName = "Extracted Data"

// Headers is the literal first row of the workbook, in column order.
var Headers = []string{"Key", "Value", "Comment"}

// Service produces XLSX bytes from validated pair sequences.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildXLSX returns a complete workbook as bytes: one sheet, the header row,
// then one row per pair in input order. No styling, formulas, or extra sheets.
func (s *Service) BuildXLSX(pairs []llm.ExtractedPair) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	for i, h := range Headers {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, p := range pairs {
		row := i + 2
		if err := write(1, row, p.Key); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		if err := write(2, row, p.Value); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		if err := write(3, row, p.Comment); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	// Widen the columns a bit
	_ = f.SetColWidth(SheetName, "A", "A", 28)
	_ = f.SetColWidth(SheetName, "B", "B", 48)
	_ = f.SetColWidth(SheetName, "C", "C", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(pairs),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
