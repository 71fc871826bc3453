package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

func editorAccounts(t *testing.T) []models.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts, err := ParseAccounts([]string{
		fmt.Sprintf("Chair@Dept.edu:%s:admin:Department Chair", hash),
		fmt.Sprintf("clerk@dept.edu:%s:EDITOR", hash),
	})
	require.NoError(t, err)
	return accounts
}

func TestParseAccounts(t *testing.T) {
	accounts := editorAccounts(t)
	require.Len(t, accounts, 2)

	assert.Equal(t, "chair@dept.edu", accounts[0].Email)
	assert.Equal(t, models.RoleAdmin, accounts[0].Role)
	assert.Equal(t, "Department Chair", accounts[0].FullName)
	assert.Equal(t, "clerk@dept.edu", accounts[1].FullName)
	assert.Equal(t, models.RoleEditor, accounts[1].Role)

	again := editorAccounts(t)
	assert.Equal(t, accounts[0].ID, again[0].ID)
	assert.NotEqual(t, accounts[0].ID, accounts[1].ID)

	for _, entry := range []string{
		"missing-parts",
		"a@b.c:plaintext:EDITOR",
		"a@b.c:$2a$04$abc:OWNER",
		":$2a$04$abc:EDITOR",
	} {
		_, err := ParseAccounts([]string{entry})
		assert.Error(t, err, entry)
	}
}

func TestAuthServiceLogin(t *testing.T) {
	svc := NewAuthService(editorAccounts(t), nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "dept-calendar",
	})
	svc.now = func() time.Time { return fixedNow }

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: " CLERK@dept.edu ", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, fixedNow, resp.IssuedAt)
	assert.Equal(t, models.RoleEditor, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "clerk@dept.edu", claims.Email)
	assert.Equal(t, "dept-calendar", claims.Issuer)

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc := NewAuthService(editorAccounts(t), nil, nil, AuthConfig{AccessTokenSecret: "test-secret"})
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@dept.edu", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "clerk@dept.edu", Password: "wrong"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	accounts := editorAccounts(t)
	issuer := NewAuthService(accounts, nil, nil, AuthConfig{AccessTokenSecret: "one"})
	verifier := NewAuthService(accounts, nil, nil, AuthConfig{AccessTokenSecret: "two"})

	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "chair@dept.edu", Password: "secret123"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(resp.AccessToken)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
	_, err = verifier.ValidateToken("garbage")
	assert.Error(t, err)
}
