package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
)

type historyRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewHistoryRepository(db SQLExecutor, logger *slog.Logger) domain.HistoryStore {
	return &historyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *historyRepository) AppendTransfer(record *domain.TransferRecord) error {
	query := `
		INSERT INTO transfer_history
		(transaction_id, source_account_number, destination_account_number, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := time.Now()
	_, err := r.db.Exec(
		query,
		record.TransactionID,
		record.SourceAccountNumber,
		record.DestinationAccountNumber,
		record.Amount,
		now,
	)

	if err != nil {
		r.logger.Error("Failed to record transfer",
			"transaction_id", record.TransactionID,
			"source_account_number", record.SourceAccountNumber,
			"destination_account_number", record.DestinationAccountNumber,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to record transfer").WithDetails(err.Error())
	}

	record.CreatedAt = now
	r.logger.Info("Transfer recorded", "transaction_id", record.TransactionID)
	return nil
}

func (r *historyRepository) AppendMutation(record *domain.MutationRecord) error {
	query := `
		INSERT INTO mutation_history (transaction_id, account_number, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`

	now := time.Now()
	_, err := r.db.Exec(query, record.TransactionID, record.AccountNumber, record.Amount, now)
	if err != nil {
		r.logger.Error("Failed to record balance mutation",
			"transaction_id", record.TransactionID,
			"account_number", record.AccountNumber,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to record balance mutation").WithDetails(err.Error())
	}

	record.CreatedAt = now
	r.logger.Info("Balance mutation recorded", "transaction_id", record.TransactionID)
	return nil
}

func (r *historyRepository) GetTransferByTransactionID(transactionID int64) (*domain.TransferRecord, error) {
	query := `
		SELECT transaction_id, source_account_number, destination_account_number, amount, created_at
		FROM transfer_history WHERE transaction_id = $1
	`

	var record domain.TransferRecord
	err := r.db.QueryRow(query, transactionID).Scan(
		&record.TransactionID,
		&record.SourceAccountNumber,
		&record.DestinationAccountNumber,
		&record.Amount,
		&record.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get transfer", "transaction_id", transactionID, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get transfer").WithDetails(err.Error())
	}

	return &record, nil
}

func (r *historyRepository) ListTransfersBySource(accountNumber int64) ([]domain.TransferRecord, error) {
	query := `
		SELECT transaction_id, source_account_number, destination_account_number, amount, created_at
		FROM transfer_history WHERE source_account_number = $1 ORDER BY transaction_id
	`

	return r.listTransfers(query, accountNumber)
}

func (r *historyRepository) ListTransfersByDestination(accountNumber int64) ([]domain.TransferRecord, error) {
	query := `
		SELECT transaction_id, source_account_number, destination_account_number, amount, created_at
		FROM transfer_history WHERE destination_account_number = $1 ORDER BY transaction_id
	`

	return r.listTransfers(query, accountNumber)
}

func (r *historyRepository) ListTransfersBySourceAndDestination(sourceAccountNumber, destinationAccountNumber int64) ([]domain.TransferRecord, error) {
	query := `
		SELECT transaction_id, source_account_number, destination_account_number, amount, created_at
		FROM transfer_history
		WHERE source_account_number = $1 AND destination_account_number = $2
		ORDER BY transaction_id
	`

	return r.listTransfers(query, sourceAccountNumber, destinationAccountNumber)
}

func (r *historyRepository) ListTransfers() ([]domain.TransferRecord, error) {
	query := `
		SELECT transaction_id, source_account_number, destination_account_number, amount, created_at
		FROM transfer_history ORDER BY transaction_id
	`

	return r.listTransfers(query)
}

func (r *historyRepository) listTransfers(query string, args ...interface{}) ([]domain.TransferRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list transfers", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list transfers").WithDetails(err.Error())
	}
	defer rows.Close()

	records := []domain.TransferRecord{}
	for rows.Next() {
		var record domain.TransferRecord
		if err := rows.Scan(
			&record.TransactionID,
			&record.SourceAccountNumber,
			&record.DestinationAccountNumber,
			&record.Amount,
			&record.CreatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan transfer").WithDetails(err.Error())
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list transfers").WithDetails(err.Error())
	}

	return records, nil
}

func (r *historyRepository) ListMutationsByAccount(accountNumber int64) ([]domain.MutationRecord, error) {
	query := `
		SELECT transaction_id, account_number, amount, created_at
		FROM mutation_history WHERE account_number = $1 ORDER BY transaction_id
	`

	rows, err := r.db.Query(query, accountNumber)
	if err != nil {
		r.logger.Error("Failed to list balance mutations", "account_number", accountNumber, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list balance mutations").WithDetails(err.Error())
	}
	defer rows.Close()

	records := []domain.MutationRecord{}
	for rows.Next() {
		var record domain.MutationRecord
		if err := rows.Scan(
			&record.TransactionID,
			&record.AccountNumber,
			&record.Amount,
			&record.CreatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan balance mutation").WithDetails(err.Error())
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list balance mutations").WithDetails(err.Error())
	}

	return records, nil
}
