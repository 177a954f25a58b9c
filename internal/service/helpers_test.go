package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_paygate/internal/config"
	"github.com/GTDGit/gtd_paygate/internal/models"
	"github.com/GTDGit/gtd_paygate/internal/repository"
)

const testSecret = "test-signing-key"

func newTestClients(t *testing.T) *repository.MemoryClientRepository {
	t.Helper()
	repo := repository.NewMemoryClientRepository()
	err := NewClientService(repo, bcrypt.MinCost).Seed(context.Background(), []config.ClientSeed{
		{ClientID: "client1", Secret: "password1", Roles: []string{"admin"}},
		{ClientID: "client2", Secret: "password2", Roles: []string{"read-only"}},
	})
	require.NoError(t, err)
	return repo
}

func newTestAuth(t *testing.T, now *time.Time) *AuthService {
	t.Helper()
	svc := NewAuthService(newTestClients(t), testSecret, time.Hour)
	if now != nil {
		svc.SetClock(func() time.Time { return *now })
	}
	return svc
}

func validInput(card string) *models.PaymentInput {
	amount := decimal.NewFromInt(100)
	return &models.PaymentInput{
		Amount:     &amount,
		CardNumber: card,
		CVV:        "123",
		ExpiryDate: "12/30",
		Currency:   "USD",
	}
}

var (
	admin    = &models.Principal{ClientID: "client1", Roles: []string{"admin"}}
	readOnly = &models.Principal{ClientID: "client2", Roles: []string{"read-only"}}
)
