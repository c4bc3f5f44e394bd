package credentials

import (
	"context"
	"fmt"

	"streamkit/internal/exchange"
)

// Options selects and configures a Source.
type Options struct {
	Mode                  string
	Region                string
	ClientIDParameter     string
	ClientSecretParameter string

	// Exchange is required in delegated mode.
	Exchange *exchange.Client

	// ParameterAPI overrides the SSM client in parameter-store mode.
	ParameterAPI ParameterAPI
}

// New builds the Source named by opts.Mode.
func New(ctx context.Context, opts Options) (Source, error) {
	switch opts.Mode {
	case ModeEnv:
		return NewEnvSource(), nil
	case ModeDelegated:
		if opts.Exchange == nil {
			return nil, fmt.Errorf("delegated credentials require an exchange base URL")
		}
		return NewDelegatedSource(opts.Exchange), nil
	case ModeParameterStore:
		api := opts.ParameterAPI
		if api == nil {
			client, err := NewSSMClient(ctx, opts.Region)
			if err != nil {
				return nil, err
			}
			api = client
		}
		return NewParameterStoreSource(api, opts.ClientIDParameter, opts.ClientSecretParameter), nil
	default:
		return nil, fmt.Errorf("unknown credentials mode %q", opts.Mode)
	}
}
