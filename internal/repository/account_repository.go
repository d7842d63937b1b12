package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountStore {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(account *domain.Account) error {
	query := `
		INSERT INTO accounts (name, personal_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING account_number
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		account.Name,
		account.PersonalID,
		account.Balance,
		now,
		now,
	).Scan(&account.AccountNumber)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				r.logger.Warn("Duplicate account creation attempt", "personal_id", account.PersonalID)
				return errors.ErrDuplicateAccount
			}
		}
		r.logger.Error("Failed to create account", "personal_id", account.PersonalID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_number", account.AccountNumber)
	return nil
}

func (r *accountRepository) GetAccount(accountNumber int64) (*domain.Account, error) {
	query := `
		SELECT account_number, name, personal_id, balance, created_at, updated_at
		FROM accounts WHERE account_number = $1
	`

	var account domain.Account
	err := r.db.QueryRow(query, accountNumber).Scan(
		&account.AccountNumber,
		&account.Name,
		&account.PersonalID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account not found", "account_number", accountNumber)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "account_number", accountNumber, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	return &account, nil
}

func (r *accountRepository) ListAccounts() ([]domain.Account, error) {
	query := `
		SELECT account_number, name, personal_id, balance, created_at, updated_at
		FROM accounts ORDER BY account_number
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list accounts").WithDetails(err.Error())
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.AccountNumber,
			&account.Name,
			&account.PersonalID,
			&account.Balance,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan account").WithDetails(err.Error())
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list accounts").WithDetails(err.Error())
	}

	return accounts, nil
}

func (r *accountRepository) UpdateBalance(accountNumber int64, newBalance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE account_number = $3
	`

	result, err := r.db.Exec(query, newBalance, time.Now(), accountNumber)
	if err != nil {
		r.logger.Error("Failed to update account balance", "account_number", accountNumber, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update account balance").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_number", accountNumber)
		return errors.ErrAccountNotFound
	}

	r.logger.Info("Account balance updated", "account_number", accountNumber, "new_balance", newBalance)
	return nil
}
