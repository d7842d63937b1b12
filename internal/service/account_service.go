package service

import (
	"log/slog"
	"strings"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
)

// AccountService covers account CRUD and the read-side history queries. None
// of this needs locking: accounts are created with a zero balance and history
// is append-only.
type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

func (s *AccountService) CreateAccount(name string, personalID int64) (*domain.Account, error) {
	s.logger.Info("Creating account", "name", name, "personal_id", personalID)

	if strings.TrimSpace(name) == "" {
		return nil, errors.NewAppError(errors.InvalidRequest, "name must not be empty")
	}
	if personalID <= 0 {
		return nil, errors.NewAppError(errors.InvalidRequest, "personal id must be positive")
	}

	account := &domain.Account{
		Name:       name,
		PersonalID: personalID,
		Balance:    0,
	}

	if err := s.store.Accounts().CreateAccount(account); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AccountService) GetAccount(accountNumber int64) (*domain.Account, error) {
	if accountNumber <= 0 {
		return nil, errors.ErrInvalidAccount
	}

	return s.store.Accounts().GetAccount(accountNumber)
}

func (s *AccountService) ListAccounts() ([]domain.Account, error) {
	return s.store.Accounts().ListAccounts()
}

func (s *AccountService) ListMutationHistory(accountNumber int64) ([]domain.MutationRecord, error) {
	if accountNumber <= 0 {
		return nil, errors.ErrInvalidAccount
	}

	return s.store.History().ListMutationsByAccount(accountNumber)
}

func (s *AccountService) GetTransferByTransactionID(transactionID int64) (*domain.TransferRecord, error) {
	return s.store.History().GetTransferByTransactionID(transactionID)
}

func (s *AccountService) ListTransfersBySource(accountNumber int64) ([]domain.TransferRecord, error) {
	return s.store.History().ListTransfersBySource(accountNumber)
}

func (s *AccountService) ListTransfersByDestination(accountNumber int64) ([]domain.TransferRecord, error) {
	return s.store.History().ListTransfersByDestination(accountNumber)
}

func (s *AccountService) ListTransfersBySourceAndDestination(sourceAccountNumber, destinationAccountNumber int64) ([]domain.TransferRecord, error) {
	return s.store.History().ListTransfersBySourceAndDestination(sourceAccountNumber, destinationAccountNumber)
}

func (s *AccountService) ListTransfers() ([]domain.TransferRecord, error) {
	return s.store.History().ListTransfers()
}
