package handler

import (
	"encoding/json"
	"net/http"

	"reservo/internal/reservations/service"
	httputil "reservo/pkg/http"
	"reservo/pkg/logger"
	"reservo/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ConflictHandler struct {
	service service.ConflictService
	log     *logger.Logger
}

func NewConflictHandler(service service.ConflictService, log *logger.Logger) *ConflictHandler {
	return &ConflictHandler{
		service: service,
		log:     log,
	}
}

func (h *ConflictHandler) respondError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *ConflictHandler) respond(w http.ResponseWriter, handlerName string, writeFn func() error) {
	if err := writeFn(); err != nil {
		h.log.Error("failed to write response", "handler", handlerName, "error", err)
	}
}

func (h *ConflictHandler) Record(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var conflict model.BookingConflict
	if err := json.NewDecoder(r.Body).Decode(&conflict); err != nil {
		h.respond(w, "Record", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	recorded, err := h.service.Record(r.Context(), &conflict)
	if err != nil {
		h.respondError(w, "Record", err)
		return
	}

	h.respond(w, "Record", func() error { return httputil.WriteCreated(w, recorded) })
}

func (h *ConflictHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.respondError(w, "GetAll", err)
		return
	}

	var resolved *bool
	if s := r.URL.Query().Get("resolved"); s != "" {
		v := s == "true"
		resolved = &v
	}

	orgID := r.Header.Get("X-Org-ID")
	conflicts, total, err := h.service.GetAll(r.Context(), orgID, resolved, limit, offset)
	if err != nil {
		h.respondError(w, "GetAll", err)
		return
	}

	h.respond(w, "GetAll", func() error { return httputil.WritePaginated(w, conflicts, total, limit, offset) })
}

func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, "Resolve", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	resolved, err := h.service.Resolve(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.respondError(w, "Resolve", err)
		return
	}

	h.respond(w, "Resolve", func() error { return httputil.WriteSuccess(w, resolved) })
}

func (h *ConflictHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/conflicts", h.Record)
	router.GET("/api/v1/conflicts", h.GetAll)
	router.POST("/api/v1/conflicts/id/:id/resolve", h.Resolve)
}
