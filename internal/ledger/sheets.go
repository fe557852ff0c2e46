package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/molchanovartem/fitness-bot/internal/models"
)

// SheetsLedger stores bookings in one sheet of a Google spreadsheet, one
// booking per row below the header.
type SheetsLedger struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *zerolog.Logger
}

func NewSheetsLedger(ctx context.Context, spreadsheetID, sheetName, credentialsPath string, logger *zerolog.Logger) (*SheetsLedger, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if sheetName == "" {
		sheetName = "Bookings"
	}
	return &SheetsLedger{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

func (s *SheetsLedger) dataRange() string {
	return fmt.Sprintf("%s!A2:J", s.sheetName)
}

func (s *SheetsLedger) fullRange() string {
	return fmt.Sprintf("%s!A1:J", s.sheetName)
}

func (s *SheetsLedger) List(ctx context.Context) ([]models.Booking, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	bookings := make([]models.Booking, 0, len(resp.Values))
	for i, row := range resp.Values {
		b, err := bookingFromRow(row)
		if err != nil {
			// A malformed row degrades data quality, it must not take the
			// whole ledger down.
			s.logger.Warn().Err(err).Int("row", i+2).Msg("skipping malformed sheet row")
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (s *SheetsLedger) Append(ctx context.Context, b models.Booking) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{bookingRowValues(&b)}}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.dataRange(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append booking row: %w", err)
	}
	return nil
}

func (s *SheetsLedger) ReplaceAll(ctx context.Context, bookings []models.Booking) error {
	values := [][]interface{}{stringsToRow(headerColumns)}
	for i := range bookings {
		values = append(values, bookingRowValues(&bookings[i]))
	}

	_, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, s.fullRange(), &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	vr := &sheets.ValueRange{Values: values}
	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, s.fullRange(), vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("rewrite sheet: %w", err)
	}
	return nil
}
