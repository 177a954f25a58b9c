package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_paygate/internal/models"
	"github.com/GTDGit/gtd_paygate/internal/repository"
	"github.com/GTDGit/gtd_paygate/internal/utils"
)

// TokenType is the only scheme accepted in the Authorization header.
const TokenType = "Bearer"

// Claims is the JWT payload issued to API clients.
type Claims struct {
	ClientID string   `json:"client_id"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// IssuedToken is the response body of a successful token request.
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"-"`
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// unknownClientHash is compared against when the client id does not exist so
// that unknown ids and wrong secrets take the same time.
func unknownClientHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-client"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// AuthService issues and validates bearer tokens for registered clients.
type AuthService struct {
	clients repository.ClientRepository
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewAuthService constructs an AuthService signing with secret and issuing
// tokens valid for ttl.
func NewAuthService(clients repository.ClientRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		clients: clients,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for issuance and expiry checks.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// Issue validates the client credentials and returns a signed token.
func (s *AuthService) Issue(ctx context.Context, clientID, clientSecret string) (*IssuedToken, error) {
	if clientID == "" || clientSecret == "" {
		return nil, utils.ErrAuthRequired
	}

	client, err := s.clients.GetByClientID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(unknownClientHash(), []byte(clientSecret))
		log.Warn().Str("client_id", clientID).Msg("Token request for unknown client")
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup client: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(clientSecret)); err != nil {
		log.Warn().Str("client_id", clientID).Msg("Client secret verification failed")
		return nil, utils.ErrInvalidCredentials
	}
	if !client.IsActive {
		log.Warn().Str("client_id", clientID).Msg("Client is inactive")
		return nil, utils.ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		ClientID: client.ClientID,
		Roles:    append([]string{}, client.Roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   client.ClientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	log.Info().Str("client_id", clientID).Time("expires_at", expiresAt).Msg("Token issued")

	return &IssuedToken{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   int64(s.ttl / time.Second),
		ExpiresAt:   expiresAt,
	}, nil
}

// Validate verifies the token signature and expiry and returns its principal.
// It performs no I/O.
func (s *AuthService) Validate(raw string) (*models.Principal, error) {
	if raw == "" {
		return nil, utils.ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.ErrTokenExpired
		}
		return nil, utils.ErrTokenInvalid
	}

	if claims.ClientID == "" || claims.Roles == nil {
		return nil, utils.ErrTokenInvalid
	}

	return &models.Principal{ClientID: claims.ClientID, Roles: claims.Roles}, nil
}
