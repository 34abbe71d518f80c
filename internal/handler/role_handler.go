package handler

import (
	"net/http"
	"strings"

	"go-account-service/internal/model"
	"go-account-service/internal/service"
)

type RoleHandler struct {
	service *service.RoleService
	audit   *service.AuditService
}

func NewRoleHandler(service *service.RoleService, audit *service.AuditService) *RoleHandler {
	return &RoleHandler{service: service, audit: audit}
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, roles, nil)
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateRoleRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	role, err := h.service.Create(r.Context(), payload.Name)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "role.create", actorFromRequest(r), status, strings.TrimSpace(payload.Name), nil, nil, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, role, nil)
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("roleName"))

	err := h.service.Delete(r.Context(), name)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "role.delete", actorFromRequest(r), status, name, nil, nil, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": name}, nil)
}
