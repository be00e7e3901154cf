package dto

import "github.com/noah-isme/qc-checklist/internal/models"

// CreateUserRequest is the body of POST /users/.
type CreateUserRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=64"`
	Password string          `json:"password" validate:"required,min=6"`
	Name     string          `json:"name" validate:"max=120"`
	Role     models.UserRole `json:"role" validate:"required,oneof=producao assistencia admin"`
}

// UpdateUserRequest is the body of PATCH /users/{id}.
type UpdateUserRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Role     *models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=producao assistencia admin"`
	Password *string          `json:"password,omitempty" validate:"omitempty,min=6"`
}

// ListUsersQuery holds the query string of GET /users/.
type ListUsersQuery struct {
	Role   string `form:"role"`
	Search string `form:"search"`
}
