package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"savings-accounts/internal/domain"
	"savings-accounts/internal/errors"
	"savings-accounts/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	Name       string `json:"name"`
	PersonalID int64  `json:"personal_id"`
}

type AccountResponse struct {
	AccountNumber int64     `json:"account_number"`
	Name          string    `json:"name"`
	PersonalID    int64     `json:"personal_id"`
	Balance       int64     `json:"balance"`
	BalanceMajor  string    `json:"balance_major"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: account.AccountNumber,
		Name:          account.Name,
		PersonalID:    account.PersonalID,
		Balance:       account.Balance,
		BalanceMajor:  formatAmount(account.Balance),
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidRequest, "invalid request body").WithDetails(err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(req.Name, req.PersonalID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := pathAccountNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountService.GetAccount(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.ListAccounts()
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, toAccountResponse(&accounts[i]))
	}

	writeJSON(w, http.StatusOK, responses)
}

func (h *AccountHandler) ListMutationHistory(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := pathAccountNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.accountService.ListMutationHistory(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func pathAccountNumber(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["account_number"]

	accountNumber, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || accountNumber <= 0 {
		return 0, errors.ErrInvalidAccount
	}

	return accountNumber, nil
}
