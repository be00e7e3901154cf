package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	listErr error
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var users []models.User
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

const (
	adminID    = "11111111-1111-4111-8111-111111111111"
	operatorID = "22222222-2222-4222-8222-222222222222"
)

func userFixture() *mockUserRepo {
	return newMockUserRepo(
		&models.User{ID: adminID, Username: "admin", Name: "Admin", Role: models.RoleAdmin},
		&models.User{ID: operatorID, Username: "joao", Name: "Joao", Role: models.RoleProducao},
	)
}

func TestUserServiceList(t *testing.T) {
	svc := NewUserService(userFixture(), nil, validator.New(), zap.NewNop())
	role := models.RoleProducao

	users, err := svc.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "joao", users[0].Username)

	bad := models.UserRole("root")
	_, err = svc.List(context.Background(), models.UserFilter{Role: &bad})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceCreate(t *testing.T) {
	repo := userFixture()
	audit := &fakeAuditRecorder{}
	svc := NewUserService(repo, audit, validator.New(), zap.NewNop())

	user, err := svc.Create(context.Background(), dto.CreateUserRequest{Username: " ana ", Password: "secret1", Name: "Ana", Role: models.RoleAssistencia}, AuditMeta{Actor: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
	assert.Equal(t, []string{models.AuditActionUserCreate}, audit.actions())

	_, err = svc.Create(context.Background(), dto.CreateUserRequest{Username: "JOAO", Password: "secret1", Role: models.RoleProducao}, AuditMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.Create(context.Background(), dto.CreateUserRequest{Username: "x", Password: "1", Role: "root"}, AuditMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceUpdate(t *testing.T) {
	repo := userFixture()
	svc := NewUserService(repo, nil, validator.New(), zap.NewNop())

	role := models.RoleAssistencia
	name := " Joao Silva "
	user, err := svc.Update(context.Background(), operatorID, dto.UpdateUserRequest{Role: &role, Name: &name}, AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistencia, user.Role)
	assert.Equal(t, "Joao Silva", user.Name)

	demote := models.RoleProducao
	_, err = svc.Update(context.Background(), adminID, dto.UpdateUserRequest{Role: &demote}, AuditMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Equal(t, models.RoleAdmin, repo.users[adminID].Role)
}

func TestUserServiceDelete(t *testing.T) {
	repo := userFixture()
	svc := NewUserService(repo, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), adminID, AuditMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.Delete(context.Background(), operatorID, AuditMeta{}))
	assert.NotContains(t, repo.users, operatorID)

	assert.True(t, errors.Is(svc.Delete(context.Background(), operatorID, AuditMeta{}), appErrors.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(context.Background(), "abc", AuditMeta{}), appErrors.ErrNotFound))
}

func TestUserServiceEnsureAdmin(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "root", "changeme"))
	require.NoError(t, svc.EnsureAdmin(context.Background(), "root", "changeme"))
	require.Len(t, repo.users, 1)
	for _, u := range repo.users {
		assert.Equal(t, models.RoleAdmin, u.Role)
	}

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
}
