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

type ResourceHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewResourceHandler(service service.CatalogService, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		log:     log,
	}
}

func (h *ResourceHandler) respondError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *ResourceHandler) respond(w http.ResponseWriter, handlerName string, writeFn func() error) {
	if err := writeFn(); err != nil {
		h.log.Error("failed to write response", "handler", handlerName, "error", err)
	}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var resource model.Resource
	if err := json.NewDecoder(r.Body).Decode(&resource); err != nil {
		h.respond(w, "Create", func() error {
			return httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
		})
		return
	}

	if err := h.service.Create(r.Context(), &resource); err != nil {
		h.respondError(w, "Create", err)
		return
	}

	h.respond(w, "Create", func() error { return httputil.WriteCreated(w, resource) })
}

func (h *ResourceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resource, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.respondError(w, "GetByID", err)
		return
	}

	h.respond(w, "GetByID", func() error { return httputil.WriteSuccess(w, resource) })
}

func (h *ResourceHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.respondError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := model.ResourceFilter{
		Kind:     model.ResourceKind(query.Get("kind")),
		Category: query.Get("category"),
		Location: query.Get("location"),
	}
	if s := query.Get("is_active"); s != "" {
		isActive := s == "true"
		filter.IsActive = &isActive
	}

	orgID := r.Header.Get("X-Org-ID")
	resources, total, err := h.service.GetAll(r.Context(), orgID, filter, limit, offset)
	if err != nil {
		h.respondError(w, "GetAll", err)
		return
	}

	h.respond(w, "GetAll", func() error { return httputil.WritePaginated(w, resources, total, limit, offset) })
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.respondError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ResourceHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/resources", h.Create)
	router.GET("/api/v1/resources", h.GetAll)
	router.GET("/api/v1/resources/id/:id", h.GetByID)
	router.DELETE("/api/v1/resources/id/:id", h.Delete)
}
