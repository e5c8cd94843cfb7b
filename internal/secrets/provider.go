// internal/secrets/provider.go

package secrets

import (
	"context"

	"SecretEndpoint-Go/internal/config"

	"github.com/cockroachdb/errors"
)

// Open builds the Accessor selected by cfg.Provider.
func Open(ctx context.Context, cfg config.Config) (Accessor, error) {
	switch cfg.Provider {
	case config.ProviderGCP:
		a, err := NewGCPAccessor(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.ProviderAWS:
		a, err := NewAWSAccessor(cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.ProviderAzure:
		a, err := NewAzureAccessor(cfg.AzureVaultName)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, errors.Wrapf(config.ErrUnknownProvider, "%q", cfg.Provider)
}
