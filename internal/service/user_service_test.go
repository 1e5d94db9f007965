package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"budgetlink/internal/dto"
	"budgetlink/pkg/auth"
	"budgetlink/pkg/codegen"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{3}$`)

func newUserService(db *memDB, codes CodeGenerator) *UserService {
	if codes == nil {
		codes = codegen.New()
	}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewUserService(&memUsers{db: db}, codes, jwtManager, 10, zap.NewNop())
}

func createUser(t *testing.T, svc *UserService, name, email, role string) *dto.UserResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:     name,
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return resp
}

func TestUserService_Create(t *testing.T) {
	svc := newUserService(newMemDB(), nil)

	consumer := createUser(t, svc, "Alice", "alice@example.com", "consumer")
	require.NotNil(t, consumer.Code)
	assert.Regexp(t, codePattern, *consumer.Code)
	assert.True(t, consumer.IsActive)

	admin := createUser(t, svc, "Bob", "bob@example.com", "admin")
	assert.Nil(t, admin.Code, "admins do not receive linking codes")
}

func TestUserService_CreateValidation(t *testing.T) {
	svc := newUserService(newMemDB(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CreateUserRequest
	}{
		{"missing name", dto.CreateUserRequest{Email: "a@b.c", Password: "x", Role: "admin"}},
		{"missing email", dto.CreateUserRequest{Name: "A", Password: "x", Role: "admin"}},
		{"missing password", dto.CreateUserRequest{Name: "A", Email: "a@b.c", Role: "admin"}},
		{"unknown role", dto.CreateUserRequest{Name: "A", Email: "a@b.c", Password: "x", Role: "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	svc := newUserService(newMemDB(), nil)
	createUser(t, svc, "Alice", "alice@example.com", "consumer")

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		Password: "password123",
		Role:     "admin",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserService_CodesAreUnique(t *testing.T) {
	svc := newUserService(newMemDB(), nil)

	seen := make(map[string]bool)
	for i := 0; i < 150; i++ {
		resp := createUser(t, svc, "Consumer", uuid.NewString()+"@example.com", "consumer")
		require.NotNil(t, resp.Code)
		assert.False(t, seen[*resp.Code], "duplicate code %s", *resp.Code)
		seen[*resp.Code] = true
	}
}

func TestUserService_CodeCollisionRetries(t *testing.T) {
	db := newMemDB()
	svc := newUserService(db, &stubCodes{codes: []string{"AAA-111", "AAA-111", "BBB-222"}})

	first := createUser(t, svc, "First", "first@example.com", "consumer")
	require.Equal(t, "AAA-111", *first.Code)

	// The generator offers the taken code again before yielding a fresh one.
	second := createUser(t, svc, "Second", "second@example.com", "consumer")
	assert.Equal(t, "BBB-222", *second.Code)
}

func TestUserService_CodeSpaceExhausted(t *testing.T) {
	db := newMemDB()
	svc := newUserService(db, &stubCodes{codes: []string{"AAA-111"}})

	createUser(t, svc, "First", "first@example.com", "consumer")

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:     "Second",
		Email:    "second@example.com",
		Password: "password123",
		Role:     "consumer",
	})
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Len(t, db.users, 1, "failed creation must not persist a user")
}

func TestUserService_Authenticate(t *testing.T) {
	db := newMemDB()
	svc := newUserService(db, nil)
	user := createUser(t, svc, "Alice", "alice@example.com", "consumer")
	ctx := context.Background()

	resp, err := svc.Authenticate(ctx, &dto.AuthRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.User.ID)

	_, err = svc.Authenticate(ctx, &dto.AuthRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, &dto.AuthRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_AuthenticateInactive(t *testing.T) {
	svc := newUserService(newMemDB(), nil)
	user := createUser(t, svc, "Alice", "alice@example.com", "consumer")

	inactive := false
	_, err := svc.Update(context.Background(), &dto.UpdateUserRequest{ID: user.ID, IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), &dto.AuthRequest{Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Update(t *testing.T) {
	svc := newUserService(newMemDB(), nil)
	user := createUser(t, svc, "Alice", "alice@example.com", "consumer")

	newName := "Alice Cooper"
	resp, err := svc.Update(context.Background(), &dto.UpdateUserRequest{ID: user.ID, Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", resp.Name)
	assert.Equal(t, user.Code, resp.Code, "code survives updates")

	_, err = svc.Update(context.Background(), &dto.UpdateUserRequest{ID: uuid.NewString(), Name: &newName})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	svc := newUserService(newMemDB(), nil)
	user := createUser(t, svc, "Alice", "alice@example.com", "consumer")
	id := uuid.MustParse(user.ID)

	resp, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.ID)

	_, err = svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_List(t *testing.T) {
	svc := newUserService(newMemDB(), nil)
	createUser(t, svc, "Alice", "alice@example.com", "consumer")
	createUser(t, svc, "Bob", "bob@example.com", "admin")

	all, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	admins, err := svc.List(context.Background(), "", "admin")
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "Bob", admins[0].Name)

	byName, err := svc.List(context.Background(), "ali", "")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Alice", byName[0].Name)
}
