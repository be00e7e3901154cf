package client

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type userGateway interface {
	ListUsers(ctx context.Context, q dto.ListUsersQuery) ([]models.User, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

var (
	errUsersAdminOnly = appErrors.Clone(appErrors.ErrForbidden, "only admins can manage users")
	errAdminDemote    = appErrors.Clone(appErrors.ErrForbidden, "an admin account cannot be demoted")
	errAdminDelete    = appErrors.Clone(appErrors.ErrForbidden, "an admin account cannot be deleted")
)

// UserAdmin manages accounts. Every operation requires an admin session.
type UserAdmin struct {
	gw       userGateway
	sessions sessionSource
	validate *validator.Validate
}

// NewUserAdmin builds the admin-only user client. A nil validate gets a
// fresh validator.
func NewUserAdmin(gw userGateway, sessions sessionSource, validate *validator.Validate) *UserAdmin {
	if validate == nil {
		validate = validator.New()
	}
	return &UserAdmin{gw: gw, sessions: sessions, validate: validate}
}

// List returns the users matching q.
func (u *UserAdmin) List(ctx context.Context, q dto.ListUsersQuery) ([]models.User, error) {
	if err := u.requireAdmin(); err != nil {
		return nil, err
	}
	return u.gw.ListUsers(ctx, q)
}

// Create trims and validates req before sending it.
func (u *UserAdmin) Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	if err := u.requireAdmin(); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if err := u.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user data")
	}
	return u.gw.CreateUser(ctx, req)
}

// Update changes name, role or password. An admin target keeps its role.
func (u *UserAdmin) Update(ctx context.Context, target models.User, req dto.UpdateUserRequest) (*models.User, error) {
	if err := u.requireAdmin(); err != nil {
		return nil, err
	}
	if target.Role == models.RoleAdmin && req.Role != nil && *req.Role != models.RoleAdmin {
		return nil, errAdminDemote
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user data")
	}
	return u.gw.UpdateUser(ctx, target.ID, req)
}

// Delete removes a non-admin account.
func (u *UserAdmin) Delete(ctx context.Context, target models.User) error {
	if err := u.requireAdmin(); err != nil {
		return err
	}
	if target.Role == models.RoleAdmin {
		return errAdminDelete
	}
	return u.gw.DeleteUser(ctx, target.ID)
}

func (u *UserAdmin) requireAdmin() error {
	session := u.sessions.Current()
	if session == nil {
		return errLoginRequired
	}
	if !access.CanAccess(session, access.AdminOnly) {
		return errUsersAdminOnly
	}
	return nil
}
