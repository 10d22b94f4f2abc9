package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/cmlabs-hris/dtr-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/dtr-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type DTRHandler interface {
	Upsert(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type dtrHandlerImpl struct {
	dtrService dtr.DTRService
}

func NewDTRHandler(dtrService dtr.DTRService) DTRHandler {
	return &dtrHandlerImpl{
		dtrService: dtrService,
	}
}

// Upsert implements DTRHandler. The record is matched by employee and date.
func (h *dtrHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dtr.UpsertDTRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode DTR request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	req.CompanyID = middleware.CompanyID(r)
	h.save(w, r, req)
}

// Update implements DTRHandler. The record is targeted by its id.
func (h *dtrHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.NotFound(w, "DTR record not found")
		return
	}

	var req dtr.UpsertDTRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode DTR request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	req.CompanyID = middleware.CompanyID(r)
	req.DTRID = &id
	h.save(w, r, req)
}

func (h *dtrHandlerImpl) save(w http.ResponseWriter, r *http.Request, req dtr.UpsertDTRRequest) {
	result, err := h.dtrService.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Created {
		response.Created(w, result.Message, result)
		return
	}
	response.SuccessWithMessage(w, result.Message, result)
}

// Get implements DTRHandler.
func (h *dtrHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.NotFound(w, "DTR record not found")
		return
	}

	result, err := h.dtrService.Get(r.Context(), middleware.CompanyID(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
