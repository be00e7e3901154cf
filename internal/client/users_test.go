package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type fakeUsers struct {
	created []dto.CreateUserRequest
	updated []string
	deleted []string
}

func (f *fakeUsers) ListUsers(context.Context, dto.ListUsersQuery) ([]models.User, error) {
	return []models.User{}, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, req dto.CreateUserRequest) (*models.User, error) {
	f.created = append(f.created, req)
	return &models.User{ID: "u-1", Username: req.Username, Name: req.Name, Role: req.Role}, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	f.updated = append(f.updated, id)
	u := &models.User{ID: id}
	if req.Role != nil {
		u.Role = *req.Role
	}
	return u, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestUserAdminProtectsAdmins(t *testing.T) {
	gw := &fakeUsers{}
	u := NewUserAdmin(gw, sessionAs(models.RoleAdmin), nil)
	admin := models.User{ID: "a-1", Username: "admin", Role: models.RoleAdmin}

	demote := models.RoleProducao
	_, err := u.Update(context.Background(), admin, dto.UpdateUserRequest{Role: &demote})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.ErrorIs(t, u.Delete(context.Background(), admin), appErrors.ErrForbidden)

	name := "Administrador"
	_, err = u.Update(context.Background(), admin, dto.UpdateUserRequest{Name: &name})
	require.NoError(t, err)

	operator := models.User{ID: "o-1", Role: models.RoleProducao}
	promote := models.RoleAssistencia
	_, err = u.Update(context.Background(), operator, dto.UpdateUserRequest{Role: &promote})
	require.NoError(t, err)
	require.NoError(t, u.Delete(context.Background(), operator))

	assert.Equal(t, []string{"a-1", "o-1"}, gw.updated)
	assert.Equal(t, []string{"o-1"}, gw.deleted)
}

func TestUserAdminCreateValidates(t *testing.T) {
	gw := &fakeUsers{}
	u := NewUserAdmin(gw, sessionAs(models.RoleAdmin), nil)

	_, err := u.Create(context.Background(), dto.CreateUserRequest{Username: "jo", Password: "123456", Role: models.RoleProducao})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = u.Create(context.Background(), dto.CreateUserRequest{Username: "joao", Password: "123456", Role: "root"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, gw.created)

	user, err := u.Create(context.Background(), dto.CreateUserRequest{Username: " joao ", Password: "123456", Role: models.RoleProducao})
	require.NoError(t, err)
	assert.Equal(t, "joao", user.Username)
}

func TestUserAdminRequiresAdmin(t *testing.T) {
	u := NewUserAdmin(&fakeUsers{}, sessionAs(models.RoleAssistencia), nil)
	_, err := u.List(context.Background(), dto.ListUsersQuery{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
