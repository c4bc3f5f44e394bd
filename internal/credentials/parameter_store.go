package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"streamkit/pkg/logging"
)

// Parameter Store defaults.
const (
	DefaultRegion                = "ap-southeast-2"
	DefaultClientIDParameter     = "/twitch/client-id"
	DefaultClientSecretParameter = "/twitch/client-secret"
)

// ParameterAPI is the subset of the SSM client used by ParameterStoreSource.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NewSSMClient creates an SSM client for region using the default AWS credential chain.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return ssm.NewFromConfig(cfg), nil
}

// ParameterStoreSource reads the client id and secret from SSM Parameter Store.
// A successful lookup is memoised for the lifetime of the source.
type ParameterStoreSource struct {
	api             ParameterAPI
	idParameter     string
	secretParameter string

	mu     sync.Mutex
	cached *Credential
}

// NewParameterStoreSource creates a source reading the given parameter names.
// Empty names fall back to the defaults.
func NewParameterStoreSource(api ParameterAPI, idParameter, secretParameter string) *ParameterStoreSource {
	if idParameter == "" {
		idParameter = DefaultClientIDParameter
	}
	if secretParameter == "" {
		secretParameter = DefaultClientSecretParameter
	}
	return &ParameterStoreSource{
		api:             api,
		idParameter:     idParameter,
		secretParameter: secretParameter,
	}
}

// Resolve implements Source. The same credential backs both kinds.
func (s *ParameterStoreSource) Resolve(ctx context.Context, kind Kind) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return *s.cached, nil
	}

	id, err := s.get(ctx, s.idParameter)
	if err != nil {
		return Credential{}, err
	}
	secret, err := s.get(ctx, s.secretParameter)
	if err != nil {
		return Credential{}, err
	}

	s.cached = &Credential{ClientID: id, ClientSecret: secret}
	logging.Debug("Credentials", "Resolved %s credential from parameter store", kind)
	return *s.cached, nil
}

func (s *ParameterStoreSource) get(ctx context.Context, name string) (string, error) {
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: parameter %s not found", ErrNotConfigured, name)
		}
		return "", fmt.Errorf("failed to read parameter %s: %w", name, err)
	}

	if out.Parameter == nil {
		return "", fmt.Errorf("%w: parameter %s has no value", ErrNotConfigured, name)
	}
	value := strings.TrimSpace(aws.ToString(out.Parameter.Value))
	if value == "" {
		return "", fmt.Errorf("%w: parameter %s is empty", ErrNotConfigured, name)
	}
	return value, nil
}
