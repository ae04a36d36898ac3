package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/lock"
	"github.com/prn-tf/sentinel/internal/metrics"
)

func newTestAuthService(t *testing.T) (*AuthService, *MockUserRepository, *MockTokenIssuer, *recordingAttempts) {
	t.Helper()
	repo := NewMockUserRepository()
	store := newTestStore(repo)
	require.NoError(t, store.CreateUser(context.Background(), domain.NewUser("testuser", ""), "Password123!"))

	issuer := &MockTokenIssuer{token: "signed-token"}
	rec := &recordingAttempts{}
	return NewAuthService(store, issuer, rec, zerolog.Nop()), repo, issuer, rec
}

func TestAuthService_LoginSuccess(t *testing.T) {
	svc, _, issuer, rec := newTestAuthService(t)

	out, err := svc.Login(context.Background(), LoginInput{Username: "TestUser", Password: "Password123!"})
	require.NoError(t, err)
	assert.Equal(t, "testuser", out.Username, "stored username is returned")
	assert.Equal(t, "signed-token", out.Token)
	assert.Equal(t, []string{"testuser"}, issuer.issued)
	assert.Equal(t, []string{metrics.LoginSucceeded}, rec.logins)
}

func TestAuthService_MissingFieldsPrecedeStorage(t *testing.T) {
	svc, repo, _, rec := newTestAuthService(t)
	before := repo.Calls()

	tests := []struct {
		name  string
		input LoginInput
		want  error
	}{
		{name: "empty username", input: LoginInput{Password: "x"}, want: ErrMissingUsername},
		{name: "whitespace username", input: LoginInput{Username: "  \t", Password: "x"}, want: ErrMissingUsername},
		{name: "both empty", input: LoginInput{}, want: ErrMissingUsername},
		{name: "empty password", input: LoginInput{Username: "testuser"}, want: ErrMissingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, before, repo.Calls(), "store must not be touched")
	assert.Len(t, rec.logins, len(tests))
}

func TestAuthService_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	svc, _, issuer, _ := newTestAuthService(t)

	_, unknownErr := svc.Login(context.Background(), LoginInput{Username: "nosuchuser", Password: "Password123!"})
	_, wrongErr := svc.Login(context.Background(), LoginInput{Username: "testuser", Password: "wrong"})

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Empty(t, issuer.issued)
}

func TestAuthService_UnknownUserStillVerifiesHash(t *testing.T) {
	hasher := &countingHasher{}
	store := NewUserStore(NewMockUserRepository(), hasher, lock.NewNoOpLocker(), UserStoreConfig{Policy: DefaultPasswordPolicy()}, zerolog.Nop())
	require.NoError(t, store.CreateUser(context.Background(), domain.NewUser("testuser", ""), "Password123!"))
	svc := NewAuthService(store, &MockTokenIssuer{token: "t"}, nil, zerolog.Nop())

	_, err := svc.Login(context.Background(), LoginInput{Username: "nosuchuser", Password: "Password123!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, hasher.Verifies(), "unknown user must cost one hash check")

	_, err = svc.Login(context.Background(), LoginInput{Username: "testuser", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 2, hasher.Verifies())
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	svc, repo, _, rec := newTestAuthService(t)
	repo.getErr = errors.New("connection refused")

	_, err := svc.Login(context.Background(), LoginInput{Username: "testuser", Password: "Password123!"})
	assert.ErrorIs(t, err, ErrInternalError)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, []string{metrics.LoginInternalFailed}, rec.logins)
}

func TestAuthService_LoginIssuerFailure(t *testing.T) {
	svc, _, issuer, _ := newTestAuthService(t)
	issuer.err = errors.New("sign failed")

	_, err := svc.Login(context.Background(), LoginInput{Username: "testuser", Password: "Password123!"})
	assert.ErrorIs(t, err, ErrInternalError)
}

func TestAuthService_Register(t *testing.T) {
	svc, _, issuer, rec := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, RegisterInput{Username: "newuser", Email: "new@example.com", Password: "Password123!"}))
	assert.Empty(t, issuer.issued, "registration issues no token")

	out, err := svc.Login(ctx, LoginInput{Username: "newuser", Password: "Password123!"})
	require.NoError(t, err)
	assert.Equal(t, "newuser", out.Username)

	err = svc.Register(ctx, RegisterInput{Username: "NewUser", Password: "Password123!"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasCode(CodeDuplicateUserName))

	assert.Equal(t, []string{"success", "rejected"}, rec.registrations)
}

func TestAuthService_RegisterStorageFailure(t *testing.T) {
	svc, repo, _, _ := newTestAuthService(t)
	repo.createErr = errors.New("read-only filesystem")

	err := svc.Register(context.Background(), RegisterInput{Username: "x1", Password: "Password123!"})
	assert.ErrorIs(t, err, ErrInternalError)
}

func TestAuthService_NilRecorder(t *testing.T) {
	store := newTestStore(NewMockUserRepository())
	svc := NewAuthService(store, &MockTokenIssuer{token: "t"}, nil, zerolog.Nop())

	_, err := svc.Login(context.Background(), LoginInput{})
	assert.ErrorIs(t, err, ErrMissingUsername)
}
