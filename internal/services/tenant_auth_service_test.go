package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"siteforge/internal/models"
	"siteforge/internal/repository"
)

// MockContentStore is a mock implementation of repository.ContentStore.
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Create(ctx context.Context, tenant, collection string, doc interface{}) (primitive.ObjectID, error) {
	args := m.Called(ctx, tenant, collection, doc)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockContentStore) List(ctx context.Context, tenant, collection string, results interface{}) error {
	args := m.Called(ctx, tenant, collection, results)
	return args.Error(0)
}

func (m *MockContentStore) Get(ctx context.Context, tenant, collection string, id primitive.ObjectID, result interface{}) error {
	args := m.Called(ctx, tenant, collection, id, result)
	return args.Error(0)
}

func (m *MockContentStore) GetByFilter(ctx context.Context, tenant, collection string, filter bson.M, result interface{}) error {
	args := m.Called(ctx, tenant, collection, filter, result)
	return args.Error(0)
}

func (m *MockContentStore) Update(ctx context.Context, tenant, collection string, id primitive.ObjectID, doc interface{}) error {
	args := m.Called(ctx, tenant, collection, id, doc)
	return args.Error(0)
}

func (m *MockContentStore) Delete(ctx context.Context, tenant, collection string, id primitive.ObjectID) error {
	args := m.Called(ctx, tenant, collection, id)
	return args.Error(0)
}

func tenantUserFixture(t *testing.T, password string, active bool) models.TenantUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return models.TenantUser{
		Meta:         models.Meta{ID: primitive.NewObjectID(), CreatedAt: time.Now().UTC()},
		Email:        "user@acme.test",
		Name:         "User",
		PasswordHash: string(hash),
		Role:         models.RoleEditor,
		IsActive:     active,
	}
}

func TestTenantAuthService_Login(t *testing.T) {
	store := new(MockContentStore)
	user := tenantUserFixture(t, "correct-horse", true)
	store.On("GetByFilter", mock.Anything, "acme", models.CollectionUsers, bson.M{"email": user.Email}, mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(4).(*models.TenantUser) = user
		}).
		Return(nil)

	svc := NewTenantAuthService(store, "acme", "secret")
	result, err := svc.Login(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)

	claims, err := VerifyToken("secret", result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "acme", claims.TenantID)
	assert.Equal(t, models.RoleEditor, claims.Role)
}

func TestTenantAuthService_Login_WrongPassword(t *testing.T) {
	store := new(MockContentStore)
	user := tenantUserFixture(t, "correct-horse", true)
	store.On("GetByFilter", mock.Anything, "acme", models.CollectionUsers, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(4).(*models.TenantUser) = user
		}).
		Return(nil)

	svc := NewTenantAuthService(store, "acme", "secret")
	_, err := svc.Login(context.Background(), user.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTenantAuthService_Login_UnknownOrInactive(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		store := new(MockContentStore)
		store.On("GetByFilter", mock.Anything, "acme", models.CollectionUsers, mock.Anything, mock.Anything).
			Return(repository.ErrNotFound)

		svc := NewTenantAuthService(store, "acme", "secret")
		_, err := svc.Login(context.Background(), "nobody@acme.test", "pw")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		store := new(MockContentStore)
		user := tenantUserFixture(t, "correct-horse", false)
		store.On("GetByFilter", mock.Anything, "acme", models.CollectionUsers, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(4).(*models.TenantUser) = user
			}).
			Return(nil)

		svc := NewTenantAuthService(store, "acme", "secret")
		_, err := svc.Login(context.Background(), user.Email, "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestTenantAuthService_Register(t *testing.T) {
	store := new(MockContentStore)
	id := primitive.NewObjectID()
	store.On("GetByFilter", mock.Anything, "acme", models.CollectionUsers, bson.M{"email": "new@acme.test"}, mock.Anything).
		Return(repository.ErrNotFound)
	store.On("Create", mock.Anything, "acme", models.CollectionUsers, mock.AnythingOfType("*models.TenantUser")).
		Return(id, nil)

	svc := NewTenantAuthService(store, "acme", "secret")
	result, err := svc.Register(context.Background(), "new@acme.test", "New User", "long-enough-pw")
	require.NoError(t, err)

	assert.Equal(t, id, result.User.ID)
	assert.Equal(t, models.RoleEditor, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.NotEqual(t, "long-enough-pw", result.User.PasswordHash)

	claims, err := VerifyToken("secret", result.Token)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.TenantID)
	store.AssertExpectations(t)
}

func TestTenantAuthService_Register_Conflict(t *testing.T) {
	store := new(MockContentStore)
	store.On("GetByFilter", mock.Anything, "acme", models.CollectionUsers, mock.Anything, mock.Anything).
		Return(nil)

	svc := NewTenantAuthService(store, "acme", "secret")
	_, err := svc.Register(context.Background(), "taken@acme.test", "X", "long-enough-pw")
	_, ok := IsConflictError(err)
	assert.True(t, ok)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTenantAuthService_Register_ShortPassword(t *testing.T) {
	svc := NewTenantAuthService(nil, "acme", "secret")
	_, err := svc.Register(context.Background(), "x@acme.test", "X", "short")
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}
