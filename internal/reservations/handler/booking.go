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

type BookingHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewBookingHandler(service service.ReservationService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) respondError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) respond(w http.ResponseWriter, handlerName string, writeFn func() error) {
	if err := writeFn(); err != nil {
		h.log.Error("failed to write response", "handler", handlerName, "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.respond(w, "Create", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	result, err := h.service.Create(r.Context(), &booking)
	if err != nil {
		h.respondError(w, "Create", err)
		return
	}

	h.respond(w, "Create", func() error { return httputil.WriteCreated(w, result) })
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.respondError(w, "GetByID", err)
		return
	}

	h.respond(w, "GetByID", func() error { return httputil.WriteSuccess(w, booking) })
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.respondError(w, "GetAll", err)
		return
	}

	orgID := r.Header.Get("X-Org-ID")
	bookings, total, err := h.service.GetAll(r.Context(), orgID, limit, offset)
	if err != nil {
		h.respondError(w, "GetAll", err)
		return
	}

	h.respond(w, "GetAll", func() error { return httputil.WritePaginated(w, bookings, total, limit, offset) })
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.respond(w, "Update", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	booking, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.respondError(w, "Update", err)
		return
	}

	h.respond(w, "Update", func() error { return httputil.WriteSuccess(w, booking) })
}

type cancelRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, "Cancel", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), req.CancelledBy, req.Reason)
	if err != nil {
		h.respondError(w, "Cancel", err)
		return
	}

	h.respond(w, "Cancel", func() error { return httputil.WriteSuccess(w, booking) })
}

type approveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, "Approve", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	booking, err := h.service.Approve(r.Context(), ps.ByName("id"), req.ApprovedBy)
	if err != nil {
		h.respondError(w, "Approve", err)
		return
	}

	h.respond(w, "Approve", func() error { return httputil.WriteSuccess(w, booking) })
}

func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, "Checkout", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	booking, err := h.service.Checkout(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.respondError(w, "Checkout", err)
		return
	}

	h.respond(w, "Checkout", func() error { return httputil.WriteSuccess(w, booking) })
}

func (h *BookingHandler) Return(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, "Return", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	booking, err := h.service.Return(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.respondError(w, "Return", err)
		return
	}

	h.respond(w, "Return", func() error { return httputil.WriteSuccess(w, booking) })
}

// Search lists bookings on one resource, optionally bounded to a window.
func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resourceID := r.URL.Query().Get("resource_id")

	startTime, err := httputil.ExtractTimeParam(r, "start_time")
	if err != nil {
		h.respondError(w, "Search", err)
		return
	}
	endTime, err := httputil.ExtractTimeParam(r, "end_time")
	if err != nil {
		h.respondError(w, "Search", err)
		return
	}
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.respondError(w, "Search", err)
		return
	}

	bookings, total, err := h.service.SearchByResource(r.Context(), resourceID, startTime, endTime, limit, offset)
	if err != nil {
		h.respondError(w, "Search", err)
		return
	}

	h.respond(w, "Search", func() error { return httputil.WritePaginated(w, bookings, total, limit, offset) })
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/search", h.Search)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Update)
	router.POST("/api/v1/bookings/id/:id/approve", h.Approve)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/checkout", h.Checkout)
	router.POST("/api/v1/bookings/id/:id/return", h.Return)
}
