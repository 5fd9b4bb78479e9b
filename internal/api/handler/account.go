package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/schoolgate/internal/api/apierr"
	"github.com/mcoot/schoolgate/internal/api/middleware"
	"github.com/mcoot/schoolgate/internal/api/request"
	"github.com/mcoot/schoolgate/internal/api/response"
	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
)

// AccountHandler handles registration, the pass holder's own account and
// the admin account screens
type AccountHandler struct {
	coordinator *auth.Coordinator
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(coordinator *auth.Coordinator) *AccountHandler {
	return &AccountHandler{
		coordinator: coordinator,
	}
}

// Register handles POST /api/v1/accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.coordinator.Register)
}

// Create handles POST /api/v1/admin/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.coordinator.Provision)
}

type createOp func(ctx context.Context, reg auth.Registration) (*model.Account, error)

func (h *AccountHandler) create(w http.ResponseWriter, r *http.Request, op createOp) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	account, err := op(r.Context(), auth.Registration{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
		Phone:           req.Phone,
		Email:           req.Email,
		Role:            model.Role(req.Role),
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountFromModel(account))
}

// Me handles GET /api/v1/accounts/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetPass(r.Context())

	account, err := h.coordinator.GetAccount(r.Context(), p.AccountID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Me{
		Account:   response.AccountFromModel(account),
		Route:     string(p.Role),
		ExpiresAt: p.ExpiresAt,
	})
}

// List handles GET /api/v1/admin/accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.coordinator.ListAccounts(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountsFromModel(accounts))
}

// Get handles GET /api/v1/admin/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.coordinator.GetAccount)
}

// Update handles PATCH /api/v1/admin/accounts/{id}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	upd := auth.AccountUpdate{
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		upd.Role = &role
	}

	account, err := h.coordinator.UpdateAccount(r.Context(), accountID(r), upd)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}

// Block handles POST /api/v1/admin/accounts/{id}/block
func (h *AccountHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.coordinator.Block)
}

// Unblock handles POST /api/v1/admin/accounts/{id}/unblock
func (h *AccountHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.coordinator.Unblock)
}

// ResetAttempts handles POST /api/v1/admin/accounts/{id}/reset-attempts
func (h *AccountHandler) ResetAttempts(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.coordinator.ResetAttempts)
}

// Delete handles DELETE /api/v1/admin/accounts/{id}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteAccount(r.Context(), accountID(r)); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

type accountOp func(ctx context.Context, id model.AccountID) (*model.Account, error)

func (h *AccountHandler) respond(w http.ResponseWriter, r *http.Request, op accountOp) {
	account, err := op(r.Context(), accountID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}

func accountID(r *http.Request) model.AccountID {
	return model.AccountID(mux.Vars(r)["id"])
}
