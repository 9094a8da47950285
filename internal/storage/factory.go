package storage

import (
	"context"
	"fmt"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/config"
	"github.com/gravadigital/navidad-api/internal/domain/roster"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/storage/memory"
	"github.com/gravadigital/navidad-api/internal/storage/postgres"
)

// RepositoryContainer is what the API needs from a storage backend
type RepositoryContainer interface {
	Votes() vote.Store
	Authenticator() auth.Authenticator
	Health(ctx context.Context) error
	Close() error
}

// StorageType represents the type of storage backend
type StorageType string

const (
	// StorageTypePostgres represents PostgreSQL storage
	StorageTypePostgres StorageType = "postgres"
	// StorageTypeMemory keeps everything in process; votes are lost on restart
	StorageTypeMemory StorageType = "memory"
)

// Factory provides a factory pattern for creating storage containers
type Factory struct {
	storageType StorageType
}

// NewFactory creates a new storage factory
func NewFactory(storageType StorageType) *Factory {
	return &Factory{
		storageType: storageType,
	}
}

// CreateContainer creates a storage container based on the configured type
func (f *Factory) CreateContainer(ctx context.Context, cfg *config.Config) (RepositoryContainer, error) {
	log := logger.Service("storage_factory")
	log.Info("Creating storage container", "type", f.storageType)

	switch f.storageType {
	case StorageTypePostgres:
		c, err := postgres.NewContainer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case StorageTypeMemory:
		r, err := roster.New(cfg.Voting.Roster)
		if err != nil {
			return nil, err
		}
		emails := make([]string, 0, r.Size())
		for _, name := range r.Names() {
			emails = append(emails, roster.CredentialEmail(name, cfg.Voting.EmailDomain))
		}
		c, err := memory.NewContainer(emails, cfg.Voting.SharedPassword)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", f.storageType)
	}
}

// GetSupportedTypes returns a list of supported storage types
func GetSupportedTypes() []StorageType {
	return []StorageType{
		StorageTypePostgres,
		StorageTypeMemory,
	}
}

// ValidateStorageType validates if a storage type is supported
func ValidateStorageType(storageType string) (StorageType, error) {
	st := StorageType(storageType)

	for _, supported := range GetSupportedTypes() {
		if st == supported {
			return st, nil
		}
	}

	return "", fmt.Errorf("unsupported storage type: %s. Supported types: %v", storageType, GetSupportedTypes())
}
