package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
	"savings-accounts/internal/lock"
)

// fakeStore is an in-memory domain.Store with snapshot-rollback transaction
// semantics: a failed unit of work leaves no partial state behind, matching
// what the SQL store guarantees.
type fakeStore struct {
	mu        sync.Mutex
	accounts  map[int64]*domain.Account
	transfers []domain.TransferRecord
	mutations []domain.MutationRecord
	nextNum   int64

	// updateFailures injects that many transient failures into UpdateBalance
	// calls made inside a transaction.
	updateFailures int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[int64]*domain.Account),
	}
}

// seedAccount registers an account with the given balance, bypassing the
// ledger, and returns its number.
func (s *fakeStore) seedAccount(balance int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextNum++
	now := time.Now()
	s.accounts[s.nextNum] = &domain.Account{
		AccountNumber: s.nextNum,
		Name:          "seeded",
		PersonalID:    s.nextNum,
		Balance:       balance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return s.nextNum
}

func (s *fakeStore) balance(accountNumber int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[accountNumber].Balance
}

func (s *fakeStore) transferRecords() []domain.TransferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TransferRecord{}, s.transfers...)
}

func (s *fakeStore) mutationRecords() []domain.MutationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MutationRecord{}, s.mutations...)
}

func (s *fakeStore) Accounts() domain.AccountStore { return &fakeAccounts{s: s} }
func (s *fakeStore) History() domain.HistoryStore  { return &fakeHistory{s: s} }

func (s *fakeStore) WithTransaction(fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapAccounts := make(map[int64]*domain.Account, len(s.accounts))
	for n, a := range s.accounts {
		copied := *a
		snapAccounts[n] = &copied
	}
	snapTransfers := append([]domain.TransferRecord{}, s.transfers...)
	snapMutations := append([]domain.MutationRecord{}, s.mutations...)

	if err := fn(&txStore{s: s}); err != nil {
		s.accounts = snapAccounts
		s.transfers = snapTransfers
		s.mutations = snapMutations
		return err
	}

	return nil
}

// txStore is the in-transaction view: the store mutex is already held, so
// its repositories touch the data directly.
type txStore struct {
	s *fakeStore
}

func (t *txStore) Accounts() domain.AccountStore { return &fakeAccounts{s: t.s, inTx: true} }
func (t *txStore) History() domain.HistoryStore  { return &fakeHistory{s: t.s, inTx: true} }

func (t *txStore) WithTransaction(func(domain.Store) error) error {
	return errors.NewAppError(errors.CommitFailed, "cannot begin nested transaction")
}

type fakeAccounts struct {
	s    *fakeStore
	inTx bool
}

func (f *fakeAccounts) lock() {
	if !f.inTx {
		f.s.mu.Lock()
	}
}

func (f *fakeAccounts) unlock() {
	if !f.inTx {
		f.s.mu.Unlock()
	}
}

func (f *fakeAccounts) CreateAccount(account *domain.Account) error {
	f.lock()
	defer f.unlock()

	f.s.nextNum++
	account.AccountNumber = f.s.nextNum
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	copied := *account
	f.s.accounts[account.AccountNumber] = &copied
	return nil
}

func (f *fakeAccounts) GetAccount(accountNumber int64) (*domain.Account, error) {
	f.lock()
	defer f.unlock()

	account, ok := f.s.accounts[accountNumber]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}

	copied := *account
	return &copied, nil
}

func (f *fakeAccounts) ListAccounts() ([]domain.Account, error) {
	f.lock()
	defer f.unlock()

	accounts := make([]domain.Account, 0, len(f.s.accounts))
	for _, account := range f.s.accounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountNumber < accounts[j].AccountNumber
	})
	return accounts, nil
}

func (f *fakeAccounts) UpdateBalance(accountNumber int64, newBalance int64) error {
	f.lock()
	defer f.unlock()

	if f.inTx && f.s.updateFailures > 0 {
		f.s.updateFailures--
		return errors.NewAppError(errors.CommitFailed, "injected update failure")
	}

	account, ok := f.s.accounts[accountNumber]
	if !ok {
		return errors.ErrAccountNotFound
	}

	account.Balance = newBalance
	account.UpdatedAt = time.Now()
	return nil
}

type fakeHistory struct {
	s    *fakeStore
	inTx bool
}

func (f *fakeHistory) lock() {
	if !f.inTx {
		f.s.mu.Lock()
	}
}

func (f *fakeHistory) unlock() {
	if !f.inTx {
		f.s.mu.Unlock()
	}
}

func (f *fakeHistory) AppendTransfer(record *domain.TransferRecord) error {
	f.lock()
	defer f.unlock()

	record.CreatedAt = time.Now()
	f.s.transfers = append(f.s.transfers, *record)
	return nil
}

func (f *fakeHistory) AppendMutation(record *domain.MutationRecord) error {
	f.lock()
	defer f.unlock()

	record.CreatedAt = time.Now()
	f.s.mutations = append(f.s.mutations, *record)
	return nil
}

func (f *fakeHistory) GetTransferByTransactionID(transactionID int64) (*domain.TransferRecord, error) {
	f.lock()
	defer f.unlock()

	for i := range f.s.transfers {
		if f.s.transfers[i].TransactionID == transactionID {
			copied := f.s.transfers[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeHistory) ListTransfersBySource(accountNumber int64) ([]domain.TransferRecord, error) {
	return f.filterTransfers(func(r domain.TransferRecord) bool {
		return r.SourceAccountNumber == accountNumber
	})
}

func (f *fakeHistory) ListTransfersByDestination(accountNumber int64) ([]domain.TransferRecord, error) {
	return f.filterTransfers(func(r domain.TransferRecord) bool {
		return r.DestinationAccountNumber == accountNumber
	})
}

func (f *fakeHistory) ListTransfersBySourceAndDestination(source, destination int64) ([]domain.TransferRecord, error) {
	return f.filterTransfers(func(r domain.TransferRecord) bool {
		return r.SourceAccountNumber == source && r.DestinationAccountNumber == destination
	})
}

func (f *fakeHistory) ListTransfers() ([]domain.TransferRecord, error) {
	return f.filterTransfers(func(domain.TransferRecord) bool { return true })
}

func (f *fakeHistory) filterTransfers(keep func(domain.TransferRecord) bool) ([]domain.TransferRecord, error) {
	f.lock()
	defer f.unlock()

	records := []domain.TransferRecord{}
	for _, record := range f.s.transfers {
		if keep(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (f *fakeHistory) ListMutationsByAccount(accountNumber int64) ([]domain.MutationRecord, error) {
	f.lock()
	defer f.unlock()

	records := []domain.MutationRecord{}
	for _, record := range f.s.mutations {
		if record.AccountNumber == accountNumber {
			records = append(records, record)
		}
	}
	return records, nil
}

// flakyLocker wraps a MemoryLocker and force-denies the first N acquisition
// attempts per lock name, simulating contention.
type flakyLocker struct {
	inner   *lock.MemoryLocker
	mu      sync.Mutex
	denials map[string]int
}

func newFlakyLocker(denials map[string]int) *flakyLocker {
	if denials == nil {
		denials = map[string]int{}
	}
	return &flakyLocker{
		inner:   lock.NewMemoryLocker(),
		denials: denials,
	}
}

func (l *flakyLocker) TryAcquire(ctx context.Context, name string) (lock.Handle, bool, error) {
	l.mu.Lock()
	if remaining := l.denials[name]; remaining > 0 {
		l.denials[name] = remaining - 1
		l.mu.Unlock()
		return nil, false, nil
	}
	l.mu.Unlock()

	return l.inner.TryAcquire(ctx, name)
}

// failingSequence fails its first N calls with an infrastructure error.
type failingSequence struct {
	mu       sync.Mutex
	failures int
	counter  int64
}

func (s *failingSequence) Next(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return 0, errors.NewAppError(errors.InfrastructureUnavailable, "sequence generator unreachable")
	}

	s.counter++
	return s.counter, nil
}
