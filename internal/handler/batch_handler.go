package handler

import (
	"net/http"
	"strconv"

	"savings-accounts/internal/errors"
	"savings-accounts/internal/service"
)

type BatchHandler struct {
	batchService *service.BatchService
}

func NewBatchHandler(batchService *service.BatchService) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
	}
}

// BatchTransfers accepts a plain-text body of "source destination amount"
// rows and runs each through the transfer orchestrator.
func (h *BatchHandler) BatchTransfers(w http.ResponseWriter, r *http.Request) {
	requests, err := service.ParseBatchTransfers(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(requests) == 0 {
		writeError(w, errors.NewAppError(errors.InvalidRequest, "batch file contains no rows"))
		return
	}

	results := h.batchService.ExecuteBatchTransfers(r.Context(), requests)
	writeJSON(w, http.StatusOK, results)
}

// MockOpenAccounts seeds test data: opens accounts and funds each through
// the real deposit path.
func (h *BatchHandler) MockOpenAccounts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	numAccounts, _ := strconv.Atoi(query.Get("num_accounts"))
	balance, _ := strconv.ParseInt(query.Get("balance"), 10, 64)

	accounts, err := h.batchService.OpenMockAccounts(r.Context(), numAccounts, balance)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, accounts)
}

// MockTransferFile renders a downloadable batch transfer file over the
// existing accounts.
func (h *BatchHandler) MockTransferFile(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	countSources, _ := strconv.Atoi(query.Get("sources"))
	perSource, _ := strconv.Atoi(query.Get("per_source"))
	amount, _ := strconv.ParseInt(query.Get("amount"), 10, 64)

	file, err := h.batchService.GenerateMockTransferFile(countSources, perSource, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", `attachment; filename="mock-transfers.txt"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(file))
}
