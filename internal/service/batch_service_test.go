package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings-accounts/internal/errors"
	"savings-accounts/internal/lock"
	"savings-accounts/internal/sequence"
)

func newTestBatch(store *fakeStore) *BatchService {
	accounts := NewAccountService(store, testLogger())
	ledger := newTestLedger(store, lock.NewMemoryLocker(), sequence.NewMemoryGenerator())
	return NewBatchService(accounts, ledger, testLogger())
}

func TestParseBatchTransfers(t *testing.T) {
	input := "1 2 300\n2 3 150\n\n3 1 50\n"

	requests, err := ParseBatchTransfers(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, BatchTransferRequest{SourceAccountNumber: 1, DestinationAccountNumber: 2, Amount: 300}, requests[0])
	assert.Equal(t, BatchTransferRequest{SourceAccountNumber: 3, DestinationAccountNumber: 1, Amount: 50}, requests[2])
}

func TestParseBatchTransfersWrongColumnCount(t *testing.T) {
	_, err := ParseBatchTransfers(strings.NewReader("1 2 300\n4 5\n"))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidRequest, errors.Code(err))
	assert.Contains(t, err.Error(), "row 2")
}

func TestParseBatchTransfersBadNumber(t *testing.T) {
	_, err := ParseBatchTransfers(strings.NewReader("1 two 300\n"))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidRequest, errors.Code(err))
	assert.Contains(t, err.Error(), "row 1")
}

func TestExecuteBatchTransfersKeepsGoingPastFailures(t *testing.T) {
	store := newFakeStore()
	a := store.seedAccount(1000)
	b := store.seedAccount(1000)
	batch := newTestBatch(store)

	requests := []BatchTransferRequest{
		{SourceAccountNumber: a, DestinationAccountNumber: b, Amount: 400},
		{SourceAccountNumber: a, DestinationAccountNumber: a, Amount: 100}, // self transfer
		{SourceAccountNumber: b, DestinationAccountNumber: a, Amount: 200},
	}

	results := batch.ExecuteBatchTransfers(context.Background(), requests)
	require.Len(t, results, 3)

	assert.True(t, results[0].Succeeded)
	assert.False(t, results[1].Succeeded)
	assert.Contains(t, results[1].Error, "source and destination")
	assert.True(t, results[2].Succeeded)

	assert.Equal(t, int64(1000-400+200), store.balance(a))
	assert.Equal(t, int64(1000+400-200), store.balance(b))
	assert.Len(t, store.transferRecords(), 2)
}

func TestOpenMockAccounts(t *testing.T) {
	store := newFakeStore()
	batch := newTestBatch(store)

	accounts, err := batch.OpenMockAccounts(context.Background(), 5, 2500)
	require.NoError(t, err)
	require.Len(t, accounts, 5)

	for _, account := range accounts {
		assert.Equal(t, int64(2500), account.Balance)
	}

	// each seed deposit went through the ledger and left a record
	assert.Len(t, store.mutationRecords(), 5)
}

func TestOpenMockAccountsDefaults(t *testing.T) {
	store := newFakeStore()
	batch := newTestBatch(store)

	accounts, err := batch.OpenMockAccounts(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, accounts, defaultMockAccounts)
	assert.Equal(t, int64(defaultMockBalance), accounts[0].Balance)
}

func TestGenerateMockTransferFile(t *testing.T) {
	store := newFakeStore()
	batch := newTestBatch(store)

	_, err := batch.GenerateMockTransferFile(2, 2, 10)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidRequest, errors.Code(err))

	for i := 0; i < 6; i++ {
		store.seedAccount(1000)
	}

	file, err := batch.GenerateMockTransferFile(2, 2, 10)
	require.NoError(t, err)

	// the file must round-trip through the parser
	requests, err := ParseBatchTransfers(strings.NewReader(file))
	require.NoError(t, err)
	require.Len(t, requests, 4)
	for _, req := range requests {
		assert.NotEqual(t, req.SourceAccountNumber, req.DestinationAccountNumber)
		assert.Equal(t, int64(10), req.Amount)
	}
}
