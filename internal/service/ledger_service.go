package service

import (
	"context"
	"log/slog"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
	"savings-accounts/internal/lock"
	"savings-accounts/internal/retry"
	"savings-accounts/internal/sequence"
)

// LedgerService is the concurrent balance-mutation engine. Every balance
// change happens while holding the account's named lock, inside a unit of
// work that also appends the matching history record, stamped with a fresh
// transaction identifier.
type LedgerService struct {
	store        domain.Store
	locker       lock.Locker
	sequence     sequence.Generator
	lockPolicy   retry.Policy
	commitPolicy retry.Policy
	logger       *slog.Logger
}

func NewLedgerService(
	store domain.Store,
	locker lock.Locker,
	seq sequence.Generator,
	lockPolicy retry.Policy,
	commitPolicy retry.Policy,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		store:        store,
		locker:       locker,
		sequence:     seq,
		lockPolicy:   lockPolicy,
		commitPolicy: commitPolicy,
		logger:       logger,
	}
}

// NextTransactionID exposes the sequence generator so callers can stamp
// records of their own with the same global ordering.
func (s *LedgerService) NextTransactionID(ctx context.Context) (int64, error) {
	return s.sequence.Next(ctx)
}

// MutateBalance applies a signed delta to one account: positive deposits,
// negative withdraws. The resulting balance must stay non-negative. On
// success the refreshed account state is returned.
func (s *LedgerService) MutateBalance(ctx context.Context, accountNumber int64, delta int64) (*domain.Account, error) {
	s.logger.Info("Processing balance mutation", "account_number", accountNumber, "amount", delta)

	if accountNumber <= 0 {
		return nil, errors.ErrInvalidAccount
	}
	if delta == 0 {
		return nil, errors.NewAppError(errors.InvalidAmount, "amount must be non-zero")
	}

	account, err := s.store.Accounts().GetAccount(accountNumber)
	if err != nil {
		return nil, err
	}

	// Cheap rejection before taking the lock. The balance is re-validated
	// against freshly-read state once the lock is held.
	if account.Balance+delta < 0 {
		return nil, errors.ErrInsufficientFunds
	}

	handle, err := s.acquireLock(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	err = retry.DoIf(ctx, s.commitPolicy, func(ctx context.Context) error {
		return s.store.WithTransaction(func(tx domain.Store) error {
			fresh, err := tx.Accounts().GetAccount(accountNumber)
			if err != nil {
				return err
			}

			newBalance := fresh.Balance + delta
			if newBalance < 0 {
				return errors.ErrInsufficientFunds
			}

			transactionID, err := s.sequence.Next(ctx)
			if err != nil {
				return err
			}

			if err := tx.Accounts().UpdateBalance(accountNumber, newBalance); err != nil {
				return err
			}

			return tx.History().AppendMutation(&domain.MutationRecord{
				TransactionID: transactionID,
				AccountNumber: accountNumber,
				Amount:        delta,
			})
		})
	}, errors.Retryable)

	if err != nil {
		s.logger.Error("Balance mutation failed", "account_number", accountNumber, "error", err)
		return nil, err
	}

	return s.store.Accounts().GetAccount(accountNumber)
}

// Transfer moves amount from the source account to the destination account.
// Both accounts' locks are taken in ascending account-number order, so
// concurrent transfers can never form a circular wait, whichever roles the
// accounts play. On success the refreshed source account state is returned.
func (s *LedgerService) Transfer(ctx context.Context, sourceAccountNumber, destinationAccountNumber, amount int64) (*domain.Account, error) {
	s.logger.Info("Processing transfer",
		"source_account_number", sourceAccountNumber,
		"destination_account_number", destinationAccountNumber,
		"amount", amount)

	if sourceAccountNumber <= 0 || destinationAccountNumber <= 0 {
		return nil, errors.ErrInvalidAccount
	}
	if sourceAccountNumber == destinationAccountNumber {
		return nil, errors.ErrSameAccount
	}
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}

	source, err := s.store.Accounts().GetAccount(sourceAccountNumber)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Accounts().GetAccount(destinationAccountNumber); err != nil {
		return nil, err
	}

	if source.Balance < amount {
		return nil, errors.ErrInsufficientFunds
	}

	low, high := sourceAccountNumber, destinationAccountNumber
	if low > high {
		low, high = high, low
	}

	lowHandle, highHandle, err := s.acquireLockPair(ctx, low, high)
	if err != nil {
		return nil, err
	}
	defer lowHandle.Release(ctx)
	defer highHandle.Release(ctx)

	err = retry.DoIf(ctx, s.commitPolicy, func(ctx context.Context) error {
		return s.store.WithTransaction(func(tx domain.Store) error {
			transactionID, err := s.sequence.Next(ctx)
			if err != nil {
				return err
			}

			if err := tx.History().AppendTransfer(&domain.TransferRecord{
				TransactionID:            transactionID,
				SourceAccountNumber:      sourceAccountNumber,
				DestinationAccountNumber: destinationAccountNumber,
				Amount:                   amount,
			}); err != nil {
				return err
			}

			freshSource, err := tx.Accounts().GetAccount(sourceAccountNumber)
			if err != nil {
				return err
			}
			if freshSource.Balance < amount {
				return errors.ErrInsufficientFunds
			}
			if err := tx.Accounts().UpdateBalance(sourceAccountNumber, freshSource.Balance-amount); err != nil {
				return err
			}

			freshDestination, err := tx.Accounts().GetAccount(destinationAccountNumber)
			if err != nil {
				return err
			}

			return tx.Accounts().UpdateBalance(destinationAccountNumber, freshDestination.Balance+amount)
		})
	}, errors.Retryable)

	if err != nil {
		s.logger.Error("Transfer failed",
			"source_account_number", sourceAccountNumber,
			"destination_account_number", destinationAccountNumber,
			"error", err)
		return nil, err
	}

	s.logger.Info("Transfer completed",
		"source_account_number", sourceAccountNumber,
		"destination_account_number", destinationAccountNumber,
		"amount", amount)

	return s.store.Accounts().GetAccount(sourceAccountNumber)
}

// acquireLock takes one account's lock, retrying contention under the lock
// policy before giving up with LockUnavailable.
func (s *LedgerService) acquireLock(ctx context.Context, accountNumber int64) (lock.Handle, error) {
	var handle lock.Handle

	err := retry.Do(ctx, s.lockPolicy, func(ctx context.Context) error {
		acquired, ok, err := s.locker.TryAcquire(ctx, lock.AccountLockName(accountNumber))
		if err != nil {
			return errors.NewAppError(errors.InfrastructureUnavailable, "lock provider unreachable").WithDetails(err.Error())
		}
		if !ok {
			return errors.ErrLockUnavailable
		}

		handle = acquired
		return nil
	})
	if err != nil {
		s.logger.Warn("Could not acquire account lock", "account_number", accountNumber, "error", err)
		return nil, err
	}

	return handle, nil
}

// acquireLockPair takes both locks in ascending account-number order. When
// the second lock cannot be taken the first is released before the attempt
// is reported as failed, so a retry never holds a lock while sleeping.
func (s *LedgerService) acquireLockPair(ctx context.Context, low, high int64) (lock.Handle, lock.Handle, error) {
	var lowHandle, highHandle lock.Handle

	err := retry.Do(ctx, s.lockPolicy, func(ctx context.Context) error {
		first, ok, err := s.locker.TryAcquire(ctx, lock.AccountLockName(low))
		if err != nil {
			return errors.NewAppError(errors.InfrastructureUnavailable, "lock provider unreachable").WithDetails(err.Error())
		}
		if !ok {
			return errors.ErrLockUnavailable
		}

		second, ok, err := s.locker.TryAcquire(ctx, lock.AccountLockName(high))
		if err != nil {
			first.Release(ctx)
			return errors.NewAppError(errors.InfrastructureUnavailable, "lock provider unreachable").WithDetails(err.Error())
		}
		if !ok {
			first.Release(ctx)
			return errors.ErrLockUnavailable
		}

		lowHandle, highHandle = first, second
		return nil
	})
	if err != nil {
		s.logger.Warn("Could not acquire account locks", "low", low, "high", high, "error", err)
		return nil, nil, err
	}

	return lowHandle, highHandle, nil
}
