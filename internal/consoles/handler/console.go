package handler

import (
	"net/http"

	"gamehall/internal/consoles/service"
	httputil "gamehall/pkg/http"
	"gamehall/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ConsoleHandler struct {
	service service.ConsoleService
	log     *logger.Logger
}

func NewConsoleHandler(service service.ConsoleService, log *logger.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		service: service,
		log:     log,
	}
}

func (h *ConsoleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	consoles, err := h.service.GetAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, consoles); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *ConsoleHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/consoles", h.GetAll)
}
