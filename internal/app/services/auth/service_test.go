package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/app/services/auth"
	domainauth "carryon/internal/domain/auth"
	domainuser "carryon/internal/domain/user"
	"carryon/internal/infra/security"
	"carryon/internal/infra/storage/memory"
)

func newService() (*auth.Service, *memory.UserRepository) {
	users := memory.NewUserRepository()
	service := &auth.Service{
		Users:     users,
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
	return service, users
}

func TestRegisterAndResolve(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	result, err := service.Register(ctx, auth.RegisterParams{
		Email:    " Alice@Example.COM ",
		Name:     "Alice",
		LastName: "Smith",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "alice@example.com", result.User.Email)

	resolved, err := service.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, resolved.User.ID)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service, _ := newService()

	_, err := service.Register(context.Background(), auth.RegisterParams{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "short",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	params := auth.RegisterParams{Email: "alice@example.com", Name: "Alice", Password: "correct horse"}
	_, err := service.Register(ctx, params)
	require.NoError(t, err)

	_, err = service.Register(ctx, params)
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestLogin(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterParams{
		Email: "alice@example.com", Name: "Alice", Password: "correct horse",
	})
	require.NoError(t, err)

	result, err := service.Login(ctx, auth.LoginParams{Email: "ALICE@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = service.Login(ctx, auth.LoginParams{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownEmailLooksLikeBadPassword(t *testing.T) {
	service, _ := newService()

	_, err := service.Login(context.Background(), auth.LoginParams{
		Email: "nobody@example.com", Password: "whatever1",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginBlockedUser(t *testing.T) {
	service, users := newService()
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterParams{
		Email: "alice@example.com", Name: "Alice", Password: "correct horse",
	})
	require.NoError(t, err)

	registered.User.Blocked = true
	require.NoError(t, users.Save(ctx, registered.User))

	_, err = service.Login(ctx, auth.LoginParams{Email: "alice@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, auth.ErrUserBlocked)
}

func TestBlockedUserLosesSessions(t *testing.T) {
	service, users := newService()
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterParams{
		Email: "alice@example.com", Name: "Alice", Password: "correct horse",
	})
	require.NoError(t, err)

	registered.User.Blocked = true
	require.NoError(t, users.Save(ctx, registered.User))

	_, err = service.ResolveToken(ctx, registered.Token)
	assert.ErrorIs(t, err, auth.ErrUserBlocked)

	registered.User.Blocked = false
	require.NoError(t, users.Save(ctx, registered.User))

	_, err = service.ResolveToken(ctx, registered.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestLogout(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	registered, err := service.Register(ctx, auth.RegisterParams{
		Email: "alice@example.com", Name: "Alice", Password: "correct horse",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, registered.Token))
	_, err = service.ResolveToken(ctx, registered.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	// A missing token is not an error.
	require.NoError(t, service.Logout(ctx, ""))
}
