package handler

import (
	"encoding/json"
	"net/http"

	"reservo/internal/reservations/service"
	httputil "reservo/pkg/http"
	"reservo/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// BridgeHandler exposes booking operations keyed by an external domain
// record, for callers that think in terms of interviews or onboarding
// sessions rather than bookings.
type BridgeHandler struct {
	service service.BridgeService
	log     *logger.Logger
}

func NewBridgeHandler(service service.BridgeService, log *logger.Logger) *BridgeHandler {
	return &BridgeHandler{
		service: service,
		log:     log,
	}
}

func (h *BridgeHandler) respondError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BridgeHandler) respond(w http.ResponseWriter, handlerName string, writeFn func() error) {
	if err := writeFn(); err != nil {
		h.log.Error("failed to write response", "handler", handlerName, "error", err)
	}
}

func (h *BridgeHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.BundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, "Book", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	result, err := h.service.BookForRecord(r.Context(), ps.ByName("record_id"), &req)
	if err != nil {
		h.respondError(w, "Book", err)
		return
	}

	// 201 even on partial failure; the body spells out what landed.
	h.respond(w, "Book", func() error { return httputil.WriteCreated(w, result) })
}

func (h *BridgeHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.GetForRecord(r.Context(), ps.ByName("record_id"))
	if err != nil {
		h.respondError(w, "Get", err)
		return
	}

	h.respond(w, "Get", func() error { return httputil.WriteSuccess(w, bookings) })
}

type recordCancelRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

func (h *BridgeHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req recordCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, "Cancel", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	cancelled, err := h.service.CancelForRecord(r.Context(), ps.ByName("record_id"), req.CancelledBy, req.Reason)
	if err != nil {
		h.respondError(w, "Cancel", err)
		return
	}

	h.respond(w, "Cancel", func() error { return httputil.WriteSuccess(w, cancelled) })
}

func (h *BridgeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/records/:record_id/bookings", h.Book)
	router.GET("/api/v1/records/:record_id/bookings", h.Get)
	router.POST("/api/v1/records/:record_id/bookings/cancel", h.Cancel)
}
