package domain

// Store is the persistence surface the ledger works against: the account and
// history stores plus the unit-of-work boundary. Repositories obtained inside
// WithTransaction share one transaction, so the writes they make become
// visible atomically or not at all.
type Store interface {
	Accounts() AccountStore
	History() HistoryStore
	WithTransaction(fn func(Store) error) error
}
