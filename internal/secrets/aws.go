// internal/secrets/aws.go

package secrets

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/cockroachdb/errors"
)

// awsCurrentStage is the staging label AWS attaches to the latest version.
const awsCurrentStage = "AWSCURRENT"

// AWSAccessor reads secrets from AWS Secrets Manager.
type AWSAccessor struct {
	client secretsmanageriface.SecretsManagerAPI
}

// NewAWSAccessor creates a Secrets Manager client from the default credential chain.
func NewAWSAccessor(region, endpoint string) (*AWSAccessor, error) {
	cfg := &aws.Config{}
	if region != "" {
		cfg.Region = aws.String(region)
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}
	return NewAWSAccessorWithClient(secretsmanager.New(sess)), nil
}

// NewAWSAccessorWithClient wraps an existing client.
func NewAWSAccessorWithClient(client secretsmanageriface.SecretsManagerAPI) *AWSAccessor {
	return &AWSAccessor{client: client}
}

// AccessLatest fetches the AWSCURRENT version of secret.
func (a *AWSAccessor) AccessLatest(ctx context.Context, secret string) (*Payload, error) {
	out, err := a.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secret),
		VersionStage: aws.String(awsCurrentStage),
	})
	if err != nil {
		return nil, classify(err, awsSentinel(err), "error loading secret from secrets manager, %s", secret)
	}

	name := secret
	if out.ARN != nil {
		name = aws.StringValue(out.ARN)
	}

	data := out.SecretBinary
	if out.SecretString != nil {
		data = []byte(aws.StringValue(out.SecretString))
	}
	return &Payload{Name: name, Data: data}, nil
}

// Close is a no-op; the SDK keeps no long-lived connections to release.
func (a *AWSAccessor) Close() error {
	return nil
}

func awsSentinel(err error) error {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return nil
	}
	switch aerr.Code() {
	case secretsmanager.ErrCodeResourceNotFoundException:
		return ErrNotFound
	case "AccessDeniedException":
		return ErrPermissionDenied
	}
	return nil
}
