package repository

import (
	"database/sql"
	"log/slog"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
)

// Store bundles the account and history repositories behind one unit-of-work
// boundary. Repositories obtained from a Store created inside WithTransaction
// all run on the same sql.Tx, so either every write in the unit of work
// becomes visible or none does.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

// Accounts returns an AccountStore using the current executor
func (s *Store) Accounts() domain.AccountStore {
	return NewAccountRepository(s.executor, s.logger)
}

// History returns a HistoryStore using the current executor
func (s *Store) History() domain.HistoryStore {
	return NewHistoryRepository(s.executor, s.logger)
}

// Ensure Store satisfies the domain's unit-of-work contract
var _ domain.Store = (*Store)(nil)

// WithTransaction executes fn within a database transaction. fn receives a
// Store whose repositories share the transaction. A failure from fn rolls
// everything back and is returned unchanged; begin/commit failures surface
// as CommitFailed.
func (s *Store) WithTransaction(fn func(domain.Store) error) error {
	// Only sql.DB can begin transactions
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.NewAppError(errors.CommitFailed, "cannot begin nested transaction")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewAppError(errors.CommitFailed, "failed to begin transaction").WithDetails(err.Error())
	}

	txStore := &Store{
		executor: &TxWrapper{Tx: tx},
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewAppError(errors.CommitFailed, "failed to commit transaction").WithDetails(err.Error())
	}

	return nil
}
