package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(NewInMemoryUserRepository())

	user, err := svc.Register("Alex", "alex@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, RoleCustomer, user.Role)
	// never stored in the clear
	require.NotEqual(t, "hunter22", user.Password)

	got, err := svc.Login("alex@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewInMemoryUserRepository())

	_, err := svc.Register("", "alex@example.com", "hunter22")
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Register("Alex", "alex@example.com", "")
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Register("Alex", "alex@example.com", "hunter22")
	require.NoError(t, err)
	_, err = svc.Register("Other", "alex@example.com", "different")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(NewInMemoryUserRepository())
	_, err := svc.Register("Alex", "alex@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login("alex@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("u1", "alex@example.com", RoleCustomer)
	require.NoError(t, err)

	userID, email, role, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
	require.Equal(t, "alex@example.com", email)
	require.Equal(t, RoleCustomer, role)

	_, _, _, err = ValidateToken(token + "tampered")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateToken("u1", "alex@example.com", RoleCustomer)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "")
	_, _, _, err = ValidateToken(token)
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestGenerateTokenRequiresUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := GenerateToken("", "alex@example.com", RoleCustomer)
	require.Error(t, err)
}
