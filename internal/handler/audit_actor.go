package handler

import (
	"net/http"
	"strings"

	"go-account-service/internal/middleware"
	"go-account-service/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = claims.UserID
	actor.Username = claims.Subject
	actor.Roles = strings.Join(claims.Roles, ",")

	return actor
}

func auditStatus(err error) (string, string) {
	if err != nil {
		return "failed", err.Error()
	}
	return "success", ""
}
