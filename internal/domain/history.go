package domain

import (
	"time"
)

// TransferRecord is the append-only audit entry for a committed transfer.
type TransferRecord struct {
	TransactionID            int64     `json:"transaction_id"`
	SourceAccountNumber      int64     `json:"source_account_number"`
	DestinationAccountNumber int64     `json:"destination_account_number"`
	Amount                   int64     `json:"amount"`
	CreatedAt                time.Time `json:"created_at"`
}

// MutationRecord is the append-only audit entry for a committed deposit or
// withdrawal. Amount is signed: positive deposit, negative withdrawal.
type MutationRecord struct {
	TransactionID int64     `json:"transaction_id"`
	AccountNumber int64     `json:"account_number"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

type HistoryStore interface {
	AppendTransfer(record *TransferRecord) error
	AppendMutation(record *MutationRecord) error

	GetTransferByTransactionID(transactionID int64) (*TransferRecord, error)
	ListTransfersBySource(accountNumber int64) ([]TransferRecord, error)
	ListTransfersByDestination(accountNumber int64) ([]TransferRecord, error)
	ListTransfersBySourceAndDestination(sourceAccountNumber, destinationAccountNumber int64) ([]TransferRecord, error)
	ListTransfers() ([]TransferRecord, error)
	ListMutationsByAccount(accountNumber int64) ([]MutationRecord, error)
}
