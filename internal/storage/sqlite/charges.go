package sqlite

import (
	"context"
	"fmt"

	"github.com/buzzware/cash/internal/models"
)

// ListCharges returns the full commission price table.
func (s *SQLiteStore) ListCharges(ctx context.Context) ([]models.Charge, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT type, price FROM charges ORDER BY type")
	if err != nil {
		return nil, fmt.Errorf("failed to query charges: %w", err)
	}
	defer rows.Close()

	var charges []models.Charge
	for rows.Next() {
		var charge models.Charge
		if err := rows.Scan(&charge.Type, &charge.Price); err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}
		charges = append(charges, charge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate charges: %w", err)
	}

	return charges, nil
}

// SetCharge inserts or updates the price for one processing type.
func (s *SQLiteStore) SetCharge(ctx context.Context, charge models.Charge) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO charges (type, price) VALUES (?, ?)
		 ON CONFLICT(type) DO UPDATE SET price = excluded.price`,
		charge.Type, charge.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to set charge: %w", err)
	}
	return nil
}
