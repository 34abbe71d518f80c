package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-account-service/internal/middleware"
	"go-account-service/internal/model"
	"go-account-service/internal/service"
	"go-account-service/pkg/apierror"
)

type AccountHandler struct {
	accounts  *service.AccountService
	auth      *service.AuthService
	audit     *service.AuditService
	adminRole string
}

func NewAccountHandler(accounts *service.AccountService, auth *service.AuthService, audit *service.AuditService, adminRole string) *AccountHandler {
	return &AccountHandler{accounts: accounts, auth: auth, audit: audit, adminRole: adminRole}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.Register(r.Context(), payload)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "account.register", actorFromRequest(r), status, strings.TrimSpace(payload.Username), nil, nil, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("User %s created successfully", account.Username),
		"id":       account.ID,
		"username": account.Username,
	}, nil)
}

// Token exchanges credentials for a bearer token.
func (h *AccountHandler) Token(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.GetToken(r.Context(), payload.Username, payload.Password)
	if err != nil {
		status, errText := auditStatus(err)
		h.audit.Log(r.Context(), "account.token", actorFromRequest(r), status, strings.TrimSpace(payload.Username), nil, nil, errText)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, token, nil)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateAccountRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.authorizeSelfOrAdmin(r, payload.Username); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.Update(r.Context(), payload)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "account.update", actorFromRequest(r), status, strings.TrimSpace(payload.Username), nil, nil, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("User %s updated successfully", account.Username),
		"username": account.Username,
		"email":    account.Email,
	}, nil)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, apierror.Field("username", "username is required"))
		return
	}

	if err := h.authorizeSelfOrAdmin(r, username); err != nil {
		writeError(w, err)
		return
	}

	err := h.accounts.Delete(r.Context(), username)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "account.delete", actorFromRequest(r), status, username, nil, nil, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("User %s deleted successfully", username),
	}, nil)
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	view, err := h.accounts.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, nil)
}

func (h *AccountHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var payload model.RoleAssignmentRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.accounts.AssignRole(r.Context(), payload.Username, payload.Role)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "account.role.assign", actorFromRequest(r), status, strings.TrimSpace(payload.Username), nil, map[string]any{"role": payload.Role}, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}

func (h *AccountHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	role := strings.TrimSpace(r.URL.Query().Get("role"))

	view, err := h.accounts.RevokeRole(r.Context(), username, role)
	status, errText := auditStatus(err)
	h.audit.Log(r.Context(), "account.role.revoke", actorFromRequest(r), status, username, map[string]any{"role": role}, nil, errText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view, nil)
}

// authorizeSelfOrAdmin lets callers change their own account; admins may change any.
// Ownership is decided by account id, never by the username in the token.
func (h *AccountHandler) authorizeSelfOrAdmin(r *http.Request, username string) error {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return model.ErrUnauthorized
	}
	if middleware.HasRole(claims, h.adminRole) {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" || claims.UserID == "" {
		return model.ErrForbidden
	}

	target, err := h.accounts.Get(r.Context(), username)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrForbidden
	}
	if err != nil {
		return err
	}
	if target.ID != claims.UserID {
		return model.ErrForbidden
	}
	return nil
}
