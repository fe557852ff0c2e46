package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/molchanovartem/fitness-bot/internal/models"
)

// Column layout shared by the Sheets and Excel backends.
var headerColumns = []string{
	"ID", "UserID", "Name", "Phone", "PhoneNormalized",
	"When", "Status", "CreatedAt", "UpdatedAt", "CanceledAt",
}

func bookingRowValues(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.UserID,
		b.Name,
		b.Phone,
		b.PhoneNormalized,
		b.When,
		b.Status,
		b.CreatedAt.UTC().Format(time.RFC3339),
		optionalTime(b.UpdatedAt),
		optionalTime(b.CanceledAt),
	}
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// bookingFromRow reads a stored row back. Missing trailing cells are
// tolerated; spreadsheets drop empty tails.
func bookingFromRow(row []interface{}) (models.Booking, error) {
	if len(row) < 7 {
		return models.Booking{}, fmt.Errorf("row too short: %d cells", len(row))
	}
	cell := func(i int) string {
		if i >= len(row) || row[i] == nil {
			return ""
		}
		return fmt.Sprint(row[i])
	}

	userID, err := strconv.ParseInt(cell(1), 10, 64)
	if err != nil {
		return models.Booking{}, fmt.Errorf("parse user id %q: %w", cell(1), err)
	}

	b := models.Booking{
		ID:              cell(0),
		UserID:          userID,
		Name:            cell(2),
		Phone:           cell(3),
		PhoneNormalized: cell(4),
		When:            cell(5),
		Status:          cell(6),
	}
	if createdAt, err := time.Parse(time.RFC3339, cell(7)); err == nil {
		b.CreatedAt = createdAt
	}
	if updatedAt, err := time.Parse(time.RFC3339, cell(8)); err == nil {
		b.UpdatedAt = &updatedAt
	}
	if canceledAt, err := time.Parse(time.RFC3339, cell(9)); err == nil {
		b.CanceledAt = &canceledAt
	}
	return b, nil
}

func stringsToRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
