package handler

import (
	"net/http"
	"strconv"
	"strings"

	"go-account-service/internal/model"
	"go-account-service/internal/service"
	"go-account-service/pkg/apierror"
)

const positionsPath = "/api/v1/positions"

type PositionHandler struct {
	service *service.PositionService
	audit   *service.AuditService
}

func NewPositionHandler(service *service.PositionService, audit *service.AuditService) *PositionHandler {
	return &PositionHandler{service: service, audit: audit}
}

func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, positions, nil)
}

func (h *PositionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	position, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, position, nil)
}

func (h *PositionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.PositionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	position, err := h.service.Create(r.Context(), payload)
	if err != nil {
		status, errText := auditStatus(err)
		h.audit.Log(r.Context(), "position.create", actorFromRequest(r), status, "", nil, nil, errText)
		writeError(w, err)
		return
	}
	h.audit.Log(r.Context(), "position.create", actorFromRequest(r), "success", strconv.FormatInt(position.ID, 10), nil, position, "")

	w.Header().Set("Location", positionsPath+"/by-id?id="+strconv.FormatInt(position.ID, 10))
	writeSuccess(w, http.StatusCreated, position, nil)
}

func (h *PositionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.PositionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	position, err := h.service.Update(r.Context(), id, payload)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "position.update", actorFromRequest(r), status, strconv.FormatInt(id, 10), nil, position, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PositionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	removed, err := h.service.Delete(r.Context(), id)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "position.delete", actorFromRequest(r), status, strconv.FormatInt(id, 10), removed, nil, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func positionID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.Field("id", "id must be a positive integer")
	}
	return id, nil
}
