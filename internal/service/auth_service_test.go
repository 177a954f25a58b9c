package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_paygate/internal/utils"
)

func TestIssueThenValidateRecoversPrincipal(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestAuth(t, &now)

	for clientID, secret := range map[string]string{"client1": "password1", "client2": "password2"} {
		tok, err := svc.Issue(context.Background(), clientID, secret)
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.Equal(t, int64(3600), tok.ExpiresIn)

		principal, err := svc.Validate(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, clientID, principal.ClientID)
	}

	tok, err := svc.Issue(context.Background(), "client1", "password1")
	require.NoError(t, err)
	principal, err := svc.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, principal.Roles)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestAuth(t, &now)

	tok, err := svc.Issue(context.Background(), "client1", "password1")
	require.NoError(t, err)

	now = now.Add(time.Hour - time.Second)
	_, err = svc.Validate(tok.AccessToken)
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = svc.Validate(tok.AccessToken)
	assert.ErrorIs(t, err, utils.ErrTokenExpired, "token is expired exactly at exp")

	now = now.Add(time.Hour)
	_, err = svc.Validate(tok.AccessToken)
	assert.ErrorIs(t, err, utils.ErrTokenExpired)
}

func TestIssueRejectsBadCredentials(t *testing.T) {
	svc := newTestAuth(t, nil)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "", "password1")
	assert.ErrorIs(t, err, utils.ErrAuthRequired)
	_, err = svc.Issue(ctx, "client1", "")
	assert.ErrorIs(t, err, utils.ErrAuthRequired)
	_, err = svc.Issue(ctx, "client1", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = svc.Issue(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestIssueRejectsInactiveClient(t *testing.T) {
	clients := newTestClients(t)
	svc := NewAuthService(clients, testSecret, time.Hour)

	c, err := clients.GetByClientID(context.Background(), "client2")
	require.NoError(t, err)
	c.IsActive = false
	require.NoError(t, clients.Upsert(context.Background(), c))

	_, err = svc.Issue(context.Background(), "client2", "password2")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	svc := newTestAuth(t, nil)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	_, err := svc.Validate("")
	assert.ErrorIs(t, err, utils.ErrTokenMissing)

	cases := map[string]string{
		"garbage":        "not-a-jwt",
		"wrong key":      sign(jwt.SigningMethodHS256, []byte("other"), Claims{ClientID: "client1", Roles: []string{"admin"}, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"wrong alg":      sign(jwt.SigningMethodHS512, []byte(testSecret), Claims{ClientID: "client1", Roles: []string{"admin"}, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"none alg":       sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{ClientID: "client1", Roles: []string{"admin"}, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"missing exp":    sign(jwt.SigningMethodHS256, []byte(testSecret), Claims{ClientID: "client1", Roles: []string{"admin"}}),
		"missing client": sign(jwt.SigningMethodHS256, []byte(testSecret), Claims{Roles: []string{"admin"}, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"missing roles":  sign(jwt.SigningMethodHS256, []byte(testSecret), Claims{ClientID: "client1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"roles not list": sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"client_id": "client1", "roles": "admin", "exp": exp.Unix()}),
	}
	for name, raw := range cases {
		_, err := svc.Validate(raw)
		assert.ErrorIs(t, err, utils.ErrTokenInvalid, name)
	}
}

func TestValidateTamperedPayload(t *testing.T) {
	svc := newTestAuth(t, nil)
	tok, err := svc.Issue(context.Background(), "client2", "password2")
	require.NoError(t, err)

	forged := sign256(t, Claims{
		ClientID:         "client2",
		Roles:            []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	parts := strings.Split(tok.AccessToken, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, utils.ErrTokenInvalid)
}

func TestTokenRolesAreSnapshotAtIssuance(t *testing.T) {
	clients := newTestClients(t)
	svc := NewAuthService(clients, testSecret, time.Hour)
	ctx := context.Background()

	tok, err := svc.Issue(ctx, "client2", "password2")
	require.NoError(t, err)

	c, err := clients.GetByClientID(ctx, "client2")
	require.NoError(t, err)
	c.Roles = []string{"admin"}
	require.NoError(t, clients.Upsert(ctx, c))

	principal, err := svc.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"read-only"}, principal.Roles)
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(nil, ""))
	assert.NoError(t, Authorize([]string{"read-only"}, ""))
	assert.NoError(t, Authorize([]string{"read-only", "admin"}, RoleAdmin))
	assert.ErrorIs(t, Authorize([]string{"read-only"}, RoleAdmin), utils.ErrForbidden)
	assert.ErrorIs(t, Authorize(nil, RoleAdmin), utils.ErrForbidden)
}

func sign256(t *testing.T, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("attacker-key"))
	require.NoError(t, err)
	return s
}
