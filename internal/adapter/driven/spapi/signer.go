package spapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const (
	signingService = "execute-api"
	// SHA-256 of an empty body; every SP-API call made here is a GET.
	emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	roleSessionName  = "led-sales-tracker"
)

// RequestSigner adds authentication headers to an outgoing request.
type RequestSigner interface {
	Sign(ctx context.Context, req *http.Request, region string) error
}

// SigV4Signer assina as chamadas com credenciais IAM, opcionalmente assumindo uma role.
type SigV4Signer struct {
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	now         func() time.Time
}

// NewSigV4Signer loads the shared AWS config for profile and, when roleARN is
// set, wraps it in a cached STS AssumeRole provider.
func NewSigV4Signer(ctx context.Context, profile, roleARN string) (*SigV4Signer, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	provider := cfg.Credentials
	if roleARN != "" {
		stsClient := sts.NewFromConfig(cfg)
		provider = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
		}))
	}

	return NewSigV4SignerWithProvider(provider), nil
}

// NewSigV4SignerWithProvider builds a signer around an existing credentials provider.
func NewSigV4SignerWithProvider(provider aws.CredentialsProvider) *SigV4Signer {
	return &SigV4Signer{
		credentials: provider,
		signer:      v4.NewSigner(),
		now:         time.Now,
	}
}

func (s *SigV4Signer) Sign(ctx context.Context, req *http.Request, region string) error {
	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieving AWS credentials: %w", err)
	}
	if err := s.signer.SignHTTP(ctx, creds, req, emptyPayloadHash, signingService, region, s.now()); err != nil {
		return fmt.Errorf("signing request: %w", err)
	}
	return nil
}
