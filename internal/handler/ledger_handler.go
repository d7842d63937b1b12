package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"savings-accounts/internal/errors"
	"savings-accounts/internal/service"
)

type LedgerHandler struct {
	ledgerService  *service.LedgerService
	accountService *service.AccountService
}

func NewLedgerHandler(ledgerService *service.LedgerService, accountService *service.AccountService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:  ledgerService,
		accountService: accountService,
	}
}

type MutateBalanceRequest struct {
	// Amount is a signed major-unit decimal string: positive deposits,
	// negative withdraws.
	Amount string `json:"amount"`
}

func (h *LedgerHandler) MutateBalance(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := pathAccountNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req MutateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidRequest, "invalid request body").WithDetails(err.Error()))
		return
	}

	delta, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.ledgerService.MutateBalance(r.Context(), accountNumber, delta)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

type TransferRequest struct {
	SourceAccountNumber      int64  `json:"source_account_number"`
	DestinationAccountNumber int64  `json:"destination_account_number"`
	Amount                   string `json:"amount"`
}

func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidRequest, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.ledgerService.Transfer(r.Context(), req.SourceAccountNumber, req.DestinationAccountNumber, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

// SearchTransfers serves the read-side transfer queries: by transaction id,
// by source, by destination, by source+destination pair, or everything.
func (h *LedgerHandler) SearchTransfers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if raw := query.Get("transaction_id"); raw != "" {
		transactionID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidRequest, "invalid transaction_id"))
			return
		}

		record, err := h.accountService.GetTransferByTransactionID(transactionID)
		if err != nil {
			writeError(w, err)
			return
		}
		if record == nil {
			writeError(w, errors.NewAppError(errors.TransferNotFound, "transfer not found"))
			return
		}

		writeJSON(w, http.StatusOK, record)
		return
	}

	source, err := optionalAccountParam(query.Get("source"))
	if err != nil {
		writeError(w, err)
		return
	}
	destination, err := optionalAccountParam(query.Get("destination"))
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case source != 0 && destination != 0:
		records, err := h.accountService.ListTransfersBySourceAndDestination(source, destination)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	case source != 0:
		records, err := h.accountService.ListTransfersBySource(source)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	case destination != 0:
		records, err := h.accountService.ListTransfersByDestination(destination)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	default:
		records, err := h.accountService.ListTransfers()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func optionalAccountParam(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}

	accountNumber, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || accountNumber <= 0 {
		return 0, errors.ErrInvalidAccount
	}

	return accountNumber, nil
}
