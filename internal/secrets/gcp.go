// internal/secrets/gcp.go

package secrets

import (
	"context"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/cockroachdb/errors"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SecretManagerClient is the subset of the Secret Manager client used here.
type SecretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

var _ SecretManagerClient = (*secretmanager.Client)(nil)

// GCPAccessor reads secrets from Google Cloud Secret Manager.
type GCPAccessor struct {
	client  SecretManagerClient
	project string
}

// NewGCPAccessor creates a Secret Manager client using Application Default Credentials.
func NewGCPAccessor(ctx context.Context, project string) (*GCPAccessor, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "secretmanager.NewClient")
	}
	return NewGCPAccessorWithClient(client, project), nil
}

// NewGCPAccessorWithClient wraps an existing client.
func NewGCPAccessorWithClient(client SecretManagerClient, project string) *GCPAccessor {
	return &GCPAccessor{client: client, project: project}
}

// AccessLatest fetches projects/{project}/secrets/{secret}/versions/latest.
func (g *GCPAccessor) AccessLatest(ctx context.Context, secret string) (*Payload, error) {
	name := ResourceName(g.project, secret, LatestVersion)

	resp, err := g.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, classify(err, gcpSentinel(err), "failed to access secret version %s", name)
	}

	return &Payload{Name: name, Data: resp.GetPayload().GetData()}, nil
}

func (g *GCPAccessor) Close() error {
	return g.client.Close()
}

func gcpSentinel(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.PermissionDenied, codes.Unauthenticated:
		return ErrPermissionDenied
	}
	return nil
}
