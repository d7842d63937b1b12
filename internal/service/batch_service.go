package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
)

// BatchTransferRequest is one parsed row of a batch transfer file.
type BatchTransferRequest struct {
	SourceAccountNumber      int64 `json:"source_account_number"`
	DestinationAccountNumber int64 `json:"destination_account_number"`
	Amount                   int64 `json:"amount"`
}

// BatchTransferResult reports the outcome of one row. Failed rows carry the
// error message; the batch keeps going past them.
type BatchTransferResult struct {
	Row           int                  `json:"row"`
	Request       BatchTransferRequest `json:"request"`
	TransactionID int64                `json:"transaction_id,omitempty"`
	Succeeded     bool                 `json:"succeeded"`
	Error         string               `json:"error,omitempty"`
}

// BatchService drives bulk operations through the real ledger path: batch
// transfer files and mock data seeding.
type BatchService struct {
	accounts *AccountService
	ledger   *LedgerService
	logger   *slog.Logger
}

func NewBatchService(accounts *AccountService, ledger *LedgerService, logger *slog.Logger) *BatchService {
	return &BatchService{
		accounts: accounts,
		ledger:   ledger,
		logger:   logger,
	}
}

// ParseBatchTransfers reads a whitespace-separated "source destination
// amount" file. Every row must have exactly three columns; parse failures
// carry the offending row number.
func ParseBatchTransfers(r io.Reader) ([]BatchTransferRequest, error) {
	requests := []BatchTransferRequest{}
	scanner := bufio.NewScanner(r)

	row := 0
	for scanner.Scan() {
		row++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, errors.NewAppErrorf(errors.InvalidRequest,
				"row %d: expected 3 columns but got %d", row, len(fields))
		}

		source, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errors.NewAppErrorf(errors.InvalidRequest, "row %d: invalid source account: %s", row, fields[0])
		}
		destination, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, errors.NewAppErrorf(errors.InvalidRequest, "row %d: invalid destination account: %s", row, fields[1])
		}
		amount, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, errors.NewAppErrorf(errors.InvalidRequest, "row %d: invalid amount: %s", row, fields[2])
		}

		requests = append(requests, BatchTransferRequest{
			SourceAccountNumber:      source,
			DestinationAccountNumber: destination,
			Amount:                   amount,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewAppError(errors.InvalidRequest, "failed to read batch file").WithDetails(err.Error())
	}

	return requests, nil
}

// ExecuteBatchTransfers runs every parsed row through the transfer
// orchestrator and collects per-row outcomes.
func (s *BatchService) ExecuteBatchTransfers(ctx context.Context, requests []BatchTransferRequest) []BatchTransferResult {
	results := make([]BatchTransferResult, 0, len(requests))

	for i, req := range requests {
		result := BatchTransferResult{
			Row:     i + 1,
			Request: req,
		}

		_, err := s.ledger.Transfer(ctx, req.SourceAccountNumber, req.DestinationAccountNumber, req.Amount)
		if err != nil {
			result.Error = err.Error()
			s.logger.Warn("Batch transfer row failed", "row", result.Row, "error", err)
		} else {
			result.Succeeded = true
		}

		results = append(results, result)
	}

	return results
}

const (
	defaultMockAccounts = 10
	maxMockAccounts     = 1000
	defaultMockBalance  = 10000
)

// OpenMockAccounts creates numAccounts accounts and seeds each with an
// initial deposit through the real balance-mutation path, so mock data goes
// through the same locks and history as everything else.
func (s *BatchService) OpenMockAccounts(ctx context.Context, numAccounts int, balance int64) ([]domain.Account, error) {
	if balance <= 0 {
		balance = defaultMockBalance
	}
	if numAccounts <= 0 || numAccounts > maxMockAccounts {
		numAccounts = defaultMockAccounts
	}

	s.logger.Info("Opening mock accounts", "count", numAccounts, "balance", balance)

	accounts := make([]domain.Account, 0, numAccounts)
	for i := 0; i < numAccounts; i++ {
		name := fmt.Sprintf("User%d", 1000+i)
		personalID := int64(200000 + i)

		account, err := s.accounts.CreateAccount(name, personalID)
		if err != nil {
			return nil, err
		}

		seeded, err := s.ledger.MutateBalance(ctx, account.AccountNumber, balance)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, *seeded)
	}

	return accounts, nil
}

// GenerateMockTransferFile renders a batch transfer file pairing each of the
// first countSources accounts with the next perSource accounts.
func (s *BatchService) GenerateMockTransferFile(countSources, perSource int, amount int64) (string, error) {
	if countSources <= 0 || perSource <= 0 {
		return "", errors.NewAppError(errors.InvalidRequest, "counts must be positive")
	}
	if amount <= 0 {
		amount = 1
	}

	accounts, err := s.accounts.ListAccounts()
	if err != nil {
		return "", err
	}
	if len(accounts) < countSources+perSource {
		return "", errors.NewAppErrorf(errors.InvalidRequest,
			"need at least %d accounts but only %d exist", countSources+perSource, len(accounts))
	}

	var b strings.Builder
	for i := 0; i < countSources; i++ {
		source := accounts[i]
		for j := 0; j < perSource; j++ {
			destination := accounts[(i+j+1)%len(accounts)]
			if destination.AccountNumber == source.AccountNumber {
				continue
			}
			fmt.Fprintf(&b, "%d %d %d\n", source.AccountNumber, destination.AccountNumber, amount)
		}
	}

	return b.String(), nil
}
