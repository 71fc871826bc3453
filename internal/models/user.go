package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleEditor UserRole = "EDITOR"
	RoleViewer UserRole = "VIEWER"
)

// Account is a configured calendar editor. Accounts come from configuration,
// there is no user table.
type Account struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         UserRole
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
