/**
 * @description
 * This file contains the HTTP handlers for the service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * Amounts cross this boundary as decimal strings ("50.00"); conversion to and
 * from cents happens here so the core only ever sees integer minor units.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/dacreathor101/simplebank-new/internal/app"
	"github.com/dacreathor101/simplebank-new/internal/domain"
	"github.com/dacreathor101/simplebank-new/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createAccountRequest struct {
	Name           string `json:"name"`
	InitialBalance string `json:"initial_balance"`
}

type accountResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Balance       string `json:"balance"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type transferAPIRequest struct {
	DestinationAccountNumber string `json:"destination_account_number"`
	DestinationRoutingNumber string `json:"destination_routing_number"`
	Amount                   string `json:"amount"`
	Description              string `json:"description"`
}

type transactionResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type transferOutcomeResponse struct {
	Status        string          `json:"status"`
	SourceAccount accountResponse `json:"source_account"`
}

func buildAccountResponse(account *domain.Account) accountResponse {
	return accountResponse{
		ID:            account.ID.String(),
		Name:          account.Name,
		Balance:       domain.FormatAmount(account.Balance),
		AccountNumber: account.AccountNumber,
		RoutingNumber: account.RoutingNumber,
	}
}

func buildTransactionResponse(txn *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          txn.ID.String(),
		AccountID:   txn.AccountID.String(),
		Kind:        string(txn.Kind),
		Amount:      domain.FormatAmount(txn.Amount),
		Description: txn.Description,
		CreatedAt:   txn.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps typed core errors onto HTTP statuses. The core
// produces no user-facing text; the wording here belongs to the API layer.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, store.ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, app.ErrUnauthorized):
		h.writeError(w, http.StatusForbidden, "Unauthorized access")
	case errors.Is(err, domain.ErrInvalidAmount):
		h.writeError(w, http.StatusBadRequest, "Invalid amount")
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeError(w, http.StatusPaymentRequired, "Not enough balance")
	case errors.Is(err, store.ErrDuplicateAccountNumber):
		h.writeError(w, http.StatusConflict, "Could not allocate a unique account number")
	default:
		log.Printf("level=error component=api msg=\"unexpected service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handlers) authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := GetAuthenticatedUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handlers) accountIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid account ID")
		return uuid.Nil, false
	}
	return accountID, true
}

// SignupHandler registers a new user.
func (h *Handlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			h.writeError(w, http.StatusConflict, "Username already exists")
		case errors.Is(err, app.ErrInvalidUsername), errors.Is(err, app.ErrInvalidPassword):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("level=error component=api endpoint=signup msg=\"signup failed\" err=%v", err)
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Printf("level=info component=api endpoint=signup outcome=created user_id=%s", user.ID)
	h.writeJSON(w, http.StatusCreated, userResponse{ID: user.ID.String(), Username: user.Username})
}

// LoginHandler authenticates a user and returns a session token.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("level=error component=api endpoint=login msg=\"login failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// ListAccountsHandler returns the caller's accounts.
func (h *Handlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		response = append(response, buildAccountResponse(&accounts[i]))
	}
	h.writeJSON(w, http.StatusOK, response)
}

// CreateAccountHandler provisions a new account for the caller.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	initialBalance := int64(0)
	if req.InitialBalance != "" {
		parsed, err := domain.ParseAmount(req.InitialBalance)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid amount")
			return
		}
		initialBalance = parsed
	}

	account, err := h.service.CreateAccount(r.Context(), userID, req.Name, initialBalance)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=create_account outcome=created account_id=%s user_id=%s", account.ID, userID)
	h.writeJSON(w, http.StatusCreated, buildAccountResponse(account))
}

// GetAccountHandler returns one account owned by the caller.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}
	accountID, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildAccountResponse(account))
}

// DepositHandler credits the account with the submitted amount.
func (h *Handlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}
	accountID, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	txn, err := h.service.Deposit(r.Context(), accountID, userID, amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=deposit outcome=applied account_id=%s amount=%d", accountID, amount)
	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(txn))
}

// WithdrawHandler debits the account with the submitted amount.
func (h *Handlers) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}
	accountID, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	txn, err := h.service.Withdraw(r.Context(), accountID, userID, amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=withdraw outcome=applied account_id=%s amount=%d", accountID, amount)
	h.writeJSON(w, http.StatusCreated, buildTransactionResponse(txn))
}

// TransferHandler submits a transfer request. The current policy freezes all
// outgoing transfers; the frozen outcome is a defined result, not an error.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}
	accountID, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req transferAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount := int64(0)
	if req.Amount != "" {
		parsed, err := domain.ParseAmount(req.Amount)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid amount")
			return
		}
		amount = parsed
	}

	outcome, err := h.service.Transfer(r.Context(), accountID, userID, domain.TransferRequest{
		DestinationAccountNumber: req.DestinationAccountNumber,
		DestinationRoutingNumber: req.DestinationRoutingNumber,
		Amount:                   amount,
		Description:              req.Description,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=transfer outcome=%s account_id=%s", outcome.Status, accountID)
	h.writeJSON(w, http.StatusOK, transferOutcomeResponse{
		Status:        string(outcome.Status),
		SourceAccount: buildAccountResponse(outcome.SourceAccount),
	})
}

// ListTransactionsHandler returns the account's history, most recent first.
func (h *Handlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticatedUser(w, r)
	if !ok {
		return
	}
	accountID, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), accountID, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := make([]transactionResponse, 0, len(transactions))
	for i := range transactions {
		response = append(response, buildTransactionResponse(&transactions[i]))
	}
	h.writeJSON(w, http.StatusOK, response)
}
