package app

import (
	"context"
	"fmt"

	"solid-service/internal/audit"
	"solid-service/internal/auth"
	"solid-service/internal/authz"
	"solid-service/internal/authz/acl"
	"solid-service/internal/config"
	"solid-service/internal/http"
	"solid-service/internal/identifier"
	"solid-service/internal/storage"
	"solid-service/internal/storage/memory"
	"solid-service/internal/storage/postgres"
	s3store "solid-service/internal/storage/s3"
)

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService() (*Service, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, resourceSet, indexer, cleanup, err := buildStorage(cfg)
	if err != nil {
		return nil, err
	}

	idStrategy := identifier.NewSingleRootStrategy(cfg.Server.BaseURL)
	aclStrategy := identifier.NewACLStrategy()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	extractor := auth.NewBearerWebIDExtractor(jwtService)

	reader := buildReader(cfg, store, idStrategy, aclStrategy)
	modes := authz.NewIntermediateModesExtractor(
		authz.NewMethodModesExtractor(resourceSet),
		resourceSet,
		idStrategy,
	)

	authorizing := authz.NewAuthorizingHandler(
		extractor,
		modes,
		reader,
		authz.NewPermissionBasedAuthorizer(),
		http.NewStorageOperationHandler(store, indexer),
	)

	auditor := audit.NewRecorder()
	resource := http.NewResourceHandler(authorizing, extractor, cfg.Server.BaseURL, auditor)
	server := http.NewServer(cfg, resource, extractor)

	return &Service{
		config:  cfg,
		server:  server,
		auditor: auditor,
		cleanup: cleanup,
	}, nil
}

// buildReader composes the permission reader pipeline. Innermost is the
// WebACL ground truth behind a union; path dispatch exempts the
// server's own well-known documents; parent and auxiliary transforms
// wrap the outside.
func buildReader(
	cfg *config.Config,
	store storage.ResourceStore,
	idStrategy identifier.Strategy,
	aclStrategy identifier.AuxiliaryStrategy,
) authz.PermissionReader {
	checker := acl.NewAnyAccessChecker(
		acl.AgentAccessChecker{},
		acl.AgentClassAccessChecker{},
		acl.NewAgentGroupAccessChecker(nil),
	)
	webacl := acl.NewWebACLReader(store, aclStrategy, idStrategy, checker)
	union := authz.NewUnionPermissionReader(webacl)

	dispatch := authz.NewPathBasedReader(cfg.Server.BaseURL, []authz.PathReader{
		authz.NewPathReader(`^/\.well-known/`, authz.NewAllStaticReader(true)),
		authz.NewPathReader(`^/`, union),
	})

	parent := authz.NewParentContainerReader(dispatch, idStrategy)
	aux := authz.NewAuxiliaryReader(parent, identifier.NewSuffixAuxiliaryStrategy(".meta", false))
	return authz.NewACLAuxiliaryReader(aux, aclStrategy)
}

// buildStorage picks the representation store and the existence probe
// for the configured backend.
func buildStorage(cfg *config.Config) (storage.ResourceStore, storage.ResourceSet, storage.ResourceIndexer, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		return store, store, nil, nil, nil

	case config.BackendS3:
		store, err := s3store.NewStore(s3store.Config{
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			BaseURL:         cfg.Server.BaseURL,
		})
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to create S3 store: %w", err)
		}
		if !cfg.Storage.UseDatabaseIndex {
			return store, store, nil, nil, nil
		}

		index, err := postgres.NewResourceIndex(context.Background(), postgres.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Name,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to create resource index: %w", err)
		}
		return store, index, index, index.Close, nil

	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
