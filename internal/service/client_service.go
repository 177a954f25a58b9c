package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_paygate/internal/config"
	"github.com/GTDGit/gtd_paygate/internal/models"
	"github.com/GTDGit/gtd_paygate/internal/repository"
)

// ClientService manages the client registry.
type ClientService struct {
	clientRepo repository.ClientRepository
	cost       int
}

// NewClientService constructs a ClientService hashing secrets with bcrypt cost.
func NewClientService(clientRepo repository.ClientRepository, cost int) *ClientService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &ClientService{clientRepo: clientRepo, cost: cost}
}

// Register stores a client with a freshly hashed secret.
func (s *ClientService) Register(ctx context.Context, clientID, secret string, roles []string) (*models.Client, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret for %s: %w", clientID, err)
	}

	client := &models.Client{
		ClientID:   clientID,
		SecretHash: string(hash),
		Roles:      append([]string{}, roles...),
		IsActive:   true,
	}
	if err := s.clientRepo.Upsert(ctx, client); err != nil {
		return nil, fmt.Errorf("store client %s: %w", clientID, err)
	}
	return client, nil
}

// Seed registers every configured client. It runs once at startup.
func (s *ClientService) Seed(ctx context.Context, seeds []config.ClientSeed) error {
	for _, seed := range seeds {
		if _, err := s.Register(ctx, seed.ClientID, seed.Secret, seed.Roles); err != nil {
			return err
		}
		log.Info().Str("client_id", seed.ClientID).Strs("roles", seed.Roles).Msg("Client registered")
	}
	return nil
}
