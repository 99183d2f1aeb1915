package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/buzzware/cash/internal/models"
)

const userColumns = "id, handle, private_key, wallet_address, display_name, token, verified, created_at"

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Handle, user.PrivateKey, user.WalletAddress,
		user.DisplayName, user.Token, user.Verified, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Handle, &user.PrivateKey, &user.WalletAddress,
		&user.DisplayName, &user.Token, &user.Verified, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUsersByHandle retrieves every user with the given rail handle.
// Handles are expected to be unique, but that is not enforced here, so
// the result is zero or more users.
func (s *SQLiteStore) GetUsersByHandle(ctx context.Context, handle string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE handle = ? ORDER BY rowid`, handle,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by handle: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Handle, &user.PrivateKey, &user.WalletAddress,
			&user.DisplayName, &user.Token, &user.Verified, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// SetUserVerified updates a user's KYC verification flag.
func (s *SQLiteStore) SetUserVerified(ctx context.Context, id string, verified bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET verified = ? WHERE id = ?", verified, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update user verification: %w", err)
	}
	return nil
}
