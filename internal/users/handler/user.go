package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"gamehall/internal/users/service"
	apperrors "gamehall/pkg/errors"
	httputil "gamehall/pkg/http"
	"gamehall/pkg/logger"
	"gamehall/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Register", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	profile, err := h.service.Register(r.Context(), &creds)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, profile); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Login", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	profile, err := h.service.Login(r.Context(), &creds)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	username := ps.ByName("username")

	profile, err := h.service.GetProfile(r.Context(), username)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetProfile", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "GetProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	username := ps.ByName("username")

	var update model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateProfile", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateProfile(r.Context(), username, &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateProfile", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UserHandler) AddPlaytime(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := h.parseUserID(ps)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddPlaytime", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req model.PlaytimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddPlaytime", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	total, err := h.service.AddPlaytime(r.Context(), userID, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddPlaytime", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"user_id": userID, "playtime": total}); err != nil {
		h.log.Error("failed to write success response", "handler", "AddPlaytime", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) GetPlaytime(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := h.parseUserID(ps)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetPlaytime", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	total, err := h.service.GetPlaytime(r.Context(), userID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetPlaytime", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"user_id": userID, "playtime": total}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetPlaytime", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) parseUserID(ps httprouter.Params) (int64, error) {
	raw := ps.ByName("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid user id: %s", raw))
	}
	return id, nil
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	// httprouter rejects static and parameter segments at the same position,
	// so auth and playtime live under their own prefixes.
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.GET("/api/v1/users/:username/profile", h.GetProfile)
	router.PATCH("/api/v1/users/:username/profile", h.UpdateProfile)
	router.POST("/api/v1/playtime/:id", h.AddPlaytime)
	router.GET("/api/v1/playtime/:id", h.GetPlaytime)
}
