package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pizza-nz/hotel-service/internal/models"
)

const accountColumns = `username, password_hash, role, failed_attempts, lockout_time`

// AccountRepository handles staff account data access
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := r.db.Rebind(`
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE username = ?
	`)

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get account by username: %w", notFound(err))
	}

	return &account, nil
}

// List retrieves all accounts, master included
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY username ASC
	`

	var accounts []models.Account
	err := r.db.SelectContext(ctx, &accounts, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}

// Create inserts an account unless the username is already taken
func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		taken, err := exists(ctx, tx, tx.Rebind(`SELECT 1 FROM accounts WHERE username = ?`), account.Username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("account %q: %w", account.Username, ErrConflict)
		}

		query := tx.Rebind(`
			INSERT INTO accounts (username, password_hash, role, failed_attempts, lockout_time)
			VALUES (?, ?, ?, 0, NULL)
		`)
		if _, err := tx.ExecContext(ctx, query, account.Username, account.PasswordHash, account.Role); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		return nil
	})
}

// Update changes the username and credential of the account stored under
// username
func (r *AccountRepository) Update(ctx context.Context, username string, account models.Account) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if account.Username != username {
			taken, err := exists(ctx, tx, tx.Rebind(`SELECT 1 FROM accounts WHERE username = ?`), account.Username)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("account %q: %w", account.Username, ErrConflict)
			}
		}

		query := tx.Rebind(`
			UPDATE accounts
			SET username = ?, password_hash = ?
			WHERE username = ?
		`)
		result, err := tx.ExecContext(ctx, query, account.Username, account.PasswordHash, username)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		return checkAffected(result.RowsAffected())
	})
}

// UpdatePassword replaces an account's credential
func (r *AccountRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	query := r.db.Rebind(`
		UPDATE accounts
		SET password_hash = ?
		WHERE username = ?
	`)

	result, err := r.db.ExecContext(ctx, query, passwordHash, username)
	if err != nil {
		return fmt.Errorf("failed to update account password: %w", err)
	}

	return checkAffected(result.RowsAffected())
}

// RecordFailure persists the failed-attempt counter and, when set, the
// lockout expiry
func (r *AccountRepository) RecordFailure(ctx context.Context, username string, attempts int, lockoutTime *time.Time) error {
	query := r.db.Rebind(`
		UPDATE accounts
		SET failed_attempts = ?, lockout_time = ?
		WHERE username = ?
	`)

	var lockout interface{}
	if lockoutTime != nil {
		lockout = lockoutTime.UTC()
	}

	result, err := r.db.ExecContext(ctx, query, attempts, lockout, username)
	if err != nil {
		return fmt.Errorf("failed to record failed attempt: %w", err)
	}

	return checkAffected(result.RowsAffected())
}

// ClearFailures resets the counter and lockout expiry
func (r *AccountRepository) ClearFailures(ctx context.Context, username string) error {
	query := r.db.Rebind(`
		UPDATE accounts
		SET failed_attempts = 0, lockout_time = NULL
		WHERE username = ?
	`)

	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to clear failed attempts: %w", err)
	}

	return checkAffected(result.RowsAffected())
}

// Delete deletes an account
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	query := r.db.Rebind(`
		DELETE FROM accounts
		WHERE username = ?
	`)

	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return checkAffected(result.RowsAffected())
}
