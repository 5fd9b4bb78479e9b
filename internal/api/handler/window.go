package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/schoolgate/internal/api/apierr"
	"github.com/mcoot/schoolgate/internal/api/request"
	"github.com/mcoot/schoolgate/internal/api/response"
	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
	"github.com/mcoot/schoolgate/internal/services/gate"
	"github.com/mcoot/schoolgate/internal/services/pass"
)

// WindowHandler handles login window endpoints
type WindowHandler struct {
	gate   *gate.Manager
	passes *pass.Issuer
	logger *slog.Logger
}

// NewWindowHandler creates a new window handler
func NewWindowHandler(gate *gate.Manager, passes *pass.Issuer, logger *slog.Logger) *WindowHandler {
	return &WindowHandler{
		gate:   gate,
		passes: passes,
		logger: logger,
	}
}

// Open handles POST /api/v1/windows
func (h *WindowHandler) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.gate.Open(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.WindowFromView(view))
}

// Get handles GET /api/v1/windows/{token}
func (h *WindowHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.gate.View(mux.Vars(r)["token"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WindowFromView(view))
}

// Tile handles GET /api/v1/windows/{token}/tiles/{pos}
func (h *WindowHandler) Tile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pos, err := strconv.Atoi(vars["pos"])
	if err != nil {
		apierr.WriteError(w, model.ErrInvalidPosition)
		return
	}

	tile, err := h.gate.Tile(vars["token"], pos)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if err := response.PNG(w, tile.Image); err != nil {
		h.logger.Warn("failed to write tile", slog.Int("position", pos), slog.String("error", err.Error()))
	}
}

// Select handles POST /api/v1/windows/{token}/select
func (h *WindowHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req request.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Position == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("position is required"))
		return
	}

	result, err := h.gate.Select(mux.Vars(r)["token"], *req.Position)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WindowFromSelect(result))
}

// Swap handles POST /api/v1/windows/{token}/swap
func (h *WindowHandler) Swap(w http.ResponseWriter, r *http.Request) {
	var req request.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.A == nil || req.B == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("a and b are required"))
		return
	}

	view, err := h.gate.Swap(mux.Vars(r)["token"], *req.A, *req.B)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WindowFromView(view))
}

// Reshuffle handles POST /api/v1/windows/{token}/reshuffle
func (h *WindowHandler) Reshuffle(w http.ResponseWriter, r *http.Request) {
	view, err := h.gate.Reshuffle(mux.Vars(r)["token"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WindowFromView(view))
}

// Login handles POST /api/v1/windows/{token}/login
func (h *WindowHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	token := mux.Vars(r)["token"]
	var signed string
	var expires time.Time
	// The pass is issued before the window closes so a signing failure can be retried
	result, err := h.gate.SubmitWith(r.Context(), token, req.Username, req.Password, func(account *model.Account) error {
		var err error
		signed, expires, err = h.passes.Issue(account)
		return err
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.LoginFromResult(result)
	if result.Outcome == auth.Authenticated {
		resp.Pass = signed
		resp.PassExpiresAt = &expires
	} else if view, err := h.gate.View(token); err == nil {
		win := response.WindowFromView(view)
		resp.Window = &win
	}

	response.JSON(w, http.StatusOK, resp)
}

// Close handles DELETE /api/v1/windows/{token}
func (h *WindowHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Close(mux.Vars(r)["token"]); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
