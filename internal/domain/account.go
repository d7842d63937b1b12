package domain

import (
	"time"
)

// Account holds a single savings account. Balance is kept in integer minor
// currency units (cents) and must never be negative outside a unit of work.
type Account struct {
	AccountNumber int64     `json:"account_number"`
	Name          string    `json:"name"`
	PersonalID    int64     `json:"personal_id"`
	Balance       int64     `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AccountStore interface {
	// CreateAccount assigns the account number and persists the record.
	CreateAccount(account *Account) error
	GetAccount(accountNumber int64) (*Account, error)
	ListAccounts() ([]Account, error)
	// UpdateBalance persists a new balance and bumps updated_at. The caller
	// must hold the account's named lock.
	UpdateBalance(accountNumber int64, newBalance int64) error
}
