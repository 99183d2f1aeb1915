package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/buzzware/cash/internal/models"
)

// CreateRequest persists a new money request to the database.
func (s *SQLiteStore) CreateRequest(ctx context.Context, request *models.Request) error {
	// Generate ID and timestamp if not set
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	if request.CreatedAt == 0 {
		request.CreatedAt = time.Now().Unix()
	}
	if request.Status == "" {
		request.Status = models.StatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, requester_id, requestee_id, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		request.ID, request.RequesterID, request.RequesteeID,
		request.Amount, string(request.Status), request.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}

	return nil
}

// GetRequest retrieves a request by ID.
func (s *SQLiteStore) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	request := &models.Request{}
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, requester_id, requestee_id, amount, status, created_at
		 FROM requests WHERE id = ?`,
		requestID,
	).Scan(&request.ID, &request.RequesterID, &request.RequesteeID,
		&request.Amount, &status, &request.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // Request not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	request.Status = models.RequestStatus(status)
	return request, nil
}

// UpdateRequestStatus performs the conditional status transition. The
// WHERE clause on the prior status is what makes concurrent finalization
// safe: exactly one of two racing writers sees a row transition.
func (s *SQLiteStore) UpdateRequestStatus(ctx context.Context, requestID string, from, to models.RequestStatus) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE requests SET status = ? WHERE id = ? AND status = ?",
		string(to), requestID, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows == 1, nil
}

// RequestsByRequester returns the requests a user has sent.
func (s *SQLiteStore) RequestsByRequester(ctx context.Context, userID string) ([]models.Request, error) {
	return s.queryRequests(ctx, "requester_id", userID)
}

// RequestsByRequestee returns the requests a user has received.
func (s *SQLiteStore) RequestsByRequestee(ctx context.Context, userID string) ([]models.Request, error) {
	return s.queryRequests(ctx, "requestee_id", userID)
}

func (s *SQLiteStore) queryRequests(ctx context.Context, column, userID string) ([]models.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, requester_id, requestee_id, amount, status, created_at
		 FROM requests WHERE `+column+` = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		var request models.Request
		var status string
		if err := rows.Scan(&request.ID, &request.RequesterID, &request.RequesteeID,
			&request.Amount, &status, &request.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		request.Status = models.RequestStatus(status)
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	return requests, nil
}
