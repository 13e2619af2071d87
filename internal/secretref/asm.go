package secretref

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/alecthomas/types/optional"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// SecretsManagerClient is the subset of the AWS Secrets Manager API used by
// ASMProvider.
type SecretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ASMProvider reads secrets from AWS Secrets Manager: asm://<secret-id>.
//
// Binary secrets are returned as-is, string secrets as their UTF-8 bytes.
type ASMProvider struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        optional.Option[string]

	once   sync.Once
	client SecretsManagerClient
	err    error
}

var _ Provider = (*ASMProvider)(nil)

// NewASMProviderWithClient creates a provider using an existing client.
func NewASMProviderWithClient(client SecretsManagerClient) *ASMProvider {
	a := &ASMProvider{client: client}
	a.once.Do(func() {})
	return a
}

func (a *ASMProvider) Key() string { return "asm" }

func (a *ASMProvider) Load(ctx context.Context, key *url.URL) ([]byte, error) {
	c, err := a.getClient(ctx)
	if err != nil {
		return nil, err
	}
	out, err := c.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(location(key)),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("secret %q: %w", location(key), ErrNotFound)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("unable to retrieve secret (%s): %w", apiErr.ErrorCode(), err)
		}
		return nil, fmt.Errorf("unable to retrieve secret: %w", err)
	}
	if out.SecretBinary != nil {
		return out.SecretBinary, nil
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %q has no value", location(key))
	}
	return []byte(*out.SecretString), nil
}

func (a *ASMProvider) getClient(ctx context.Context) (SecretsManagerClient, error) {
	a.once.Do(func() {
		var optFns []func(*config.LoadOptions) error

		// Static credentials if provided, otherwise the SDK default chain.
		if a.AccessKeyID != "" {
			creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(a.AccessKeyID, a.SecretAccessKey, ""))
			optFns = append(optFns, config.WithCredentialsProvider(creds))
		}
		if a.Region != "" {
			optFns = append(optFns, config.WithRegion(a.Region))
		}

		cfg, err := config.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			a.err = fmt.Errorf("unable to load aws config: %w", err)
			return
		}
		a.client = secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
			if e, ok := a.Endpoint.Get(); ok {
				o.BaseEndpoint = aws.String(e)
			}
		})
	})
	return a.client, a.err
}
