package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/molchanovartem/fitness-bot/internal/models"
)

// ExcelLedger keeps bookings in a local .xlsx file. It is the fallback
// store when the spreadsheet API is unreachable, and a standalone backend
// for local runs. Every write rewrites the whole file.
type ExcelLedger struct {
	path   string
	mu     sync.Mutex
	logger *zerolog.Logger
}

const excelSheet = "Bookings"

func NewExcelLedger(path string, logger *zerolog.Logger) (*ExcelLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	l := &ExcelLedger{path: path, logger: logger}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := l.writeFile(nil); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *ExcelLedger) List(ctx context.Context) ([]models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheet)
	if err != nil {
		return nil, fmt.Errorf("read ledger sheet: %w", err)
	}

	var bookings []models.Booking
	for i, row := range rows {
		if i == 0 { // header
			continue
		}
		b, err := bookingFromRow(stringsToRow(row))
		if err != nil {
			l.logger.Warn().Err(err).Int("row", i+1).Msg("skipping malformed ledger row")
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (l *ExcelLedger) Append(ctx context.Context, b models.Booking) error {
	bookings, err := l.List(ctx)
	if err != nil {
		return err
	}
	bookings = append(bookings, b)

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeFile(bookings)
}

func (l *ExcelLedger) ReplaceAll(ctx context.Context, bookings []models.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeFile(bookings)
}

func (l *ExcelLedger) writeFile(bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", excelSheet)

	for col, name := range headerColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(excelSheet, cell, name); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(headerColumns), 1)
		_ = f.SetCellStyle(excelSheet, start, end, style)
	}

	for i := range bookings {
		values := bookingRowValues(&bookings[i])
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(excelSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("save ledger file: %w", err)
	}
	return nil
}
