// internal/secrets/azure.go

package secrets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/keyvault/azsecrets"
	"github.com/cockroachdb/errors"
)

// KeyVaultClient is the subset of azsecrets.Client used here.
type KeyVaultClient interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

var _ KeyVaultClient = (*azsecrets.Client)(nil)

// AzureAccessor reads secrets from Azure Key Vault.
type AzureAccessor struct {
	client KeyVaultClient
}

// NewAzureAccessor connects to https://{vaultName}.vault.azure.net/ with DefaultAzureCredential.
func NewAzureAccessor(vaultName string) (*AzureAccessor, error) {
	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", vaultName)

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain a credential")
	}

	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create secret client")
	}
	return NewAzureAccessorWithClient(client), nil
}

// NewAzureAccessorWithClient wraps an existing client.
func NewAzureAccessorWithClient(client KeyVaultClient) *AzureAccessor {
	return &AzureAccessor{client: client}
}

// AccessLatest fetches the current version of secret. An empty version
// selects the latest in Key Vault.
func (a *AzureAccessor) AccessLatest(ctx context.Context, secret string) (*Payload, error) {
	resp, err := a.client.GetSecret(ctx, secret, "", nil)
	if err != nil {
		return nil, classify(err, azureSentinel(err), "could not retrieve secret %s", secret)
	}

	name := secret
	if resp.ID != nil {
		name = string(*resp.ID)
	}

	var data []byte
	if resp.Value != nil {
		data = []byte(*resp.Value)
	}
	return &Payload{Name: name, Data: data}, nil
}

func (a *AzureAccessor) Close() error {
	return nil
}

func azureSentinel(err error) error {
	var rerr *azcore.ResponseError
	if !errors.As(err, &rerr) {
		return nil
	}
	switch rerr.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrPermissionDenied
	}
	return nil
}
