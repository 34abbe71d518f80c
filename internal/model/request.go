package model

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateAccountRequest changes only the fields that are present.
type UpdateAccountRequest struct {
	Username    string  `json:"username"`
	NewUsername *string `json:"newUsername,omitempty"`
	NewEmail    *string `json:"newEmail,omitempty"`
	NewPassword *string `json:"newPassword,omitempty"`
}

type RoleAssignmentRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type CreateRoleRequest struct {
	Name string `json:"name"`
}

type PositionRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active,omitempty"`
}

type AuditActor struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Roles    string `json:"roles,omitempty"`
	IP       string `json:"ip,omitempty"`
}

type AuditEntry struct {
	Action     string     `json:"action"`
	OccurredAt string     `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Before     any        `json:"before,omitempty"`
	After      any        `json:"after,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type AuditQuery struct {
	Action   string
	Username string
	Status   string
	Resource string
	From     string
	To       string
	Page     int
	Limit    int
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
}
