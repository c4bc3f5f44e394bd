package credentials

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamkit/internal/exchange"
)

type fakeParameterAPI struct {
	values map[string]string
	calls  int
	err    error
}

func (f *fakeParameterAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("secure strings must be decrypted")
	}
	v, ok := f.values[aws.ToString(in.Name)]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{Message: aws.String("not found")}
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(v)}}, nil
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "app", App.String())
	assert.Equal(t, "user", User.String())
	assert.Equal(t, "unknown", Kind(7).String())
}

func TestEnvSource(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Credential
		wantErr bool
	}{
		{
			name: "both set",
			env:  map[string]string{EnvClientID: "id", EnvClientSecret: "secret"},
			want: Credential{ClientID: "id", ClientSecret: "secret"},
		},
		{
			name:    "missing secret",
			env:     map[string]string{EnvClientID: "id"},
			wantErr: true,
		},
		{
			name:    "blank id",
			env:     map[string]string{EnvClientID: "  ", EnvClientSecret: "secret"},
			wantErr: true,
		},
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEnvSourceFromMap(tt.env).Resolve(context.Background(), User)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotConfigured)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.HasSecret())
		})
	}
}

func TestEnvSource_ServerCredentials(t *testing.T) {
	src := NewEnvSourceFromMap(map[string]string{EnvClientID: "id", EnvClientSecret: "secret"})

	var creds exchange.ServerCredentials = src.ServerCredentials
	id, secret, err := creds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", id)
	assert.Equal(t, "secret", secret)
}

func TestParameterStoreSource(t *testing.T) {
	t.Run("resolves and memoises", func(t *testing.T) {
		api := &fakeParameterAPI{values: map[string]string{
			DefaultClientIDParameter:     "id",
			DefaultClientSecretParameter: "secret",
		}}
		src := NewParameterStoreSource(api, "", "")

		for i := 0; i < 3; i++ {
			got, err := src.Resolve(context.Background(), App)
			require.NoError(t, err)
			assert.Equal(t, Credential{ClientID: "id", ClientSecret: "secret"}, got)
		}
		assert.Equal(t, 2, api.calls, "parameters should be read once")
	})

	t.Run("custom parameter names", func(t *testing.T) {
		api := &fakeParameterAPI{values: map[string]string{"/a": "id", "/b": "secret"}}
		got, err := NewParameterStoreSource(api, "/a", "/b").Resolve(context.Background(), User)
		require.NoError(t, err)
		assert.Equal(t, "id", got.ClientID)
	})

	t.Run("missing parameter is not configured", func(t *testing.T) {
		api := &fakeParameterAPI{values: map[string]string{DefaultClientIDParameter: "id"}}
		_, err := NewParameterStoreSource(api, "", "").Resolve(context.Background(), App)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("transport failure is not memoised", func(t *testing.T) {
		api := &fakeParameterAPI{err: errors.New("no route to host")}
		src := NewParameterStoreSource(api, "", "")

		_, err := src.Resolve(context.Background(), App)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotConfigured)

		api.err = nil
		api.values = map[string]string{DefaultClientIDParameter: "id", DefaultClientSecretParameter: "secret"}
		got, err := src.Resolve(context.Background(), App)
		require.NoError(t, err)
		assert.Equal(t, "id", got.ClientID)
	})
}

func TestDelegatedSource(t *testing.T) {
	t.Run("returns only the client id", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"app-token","client_id":"public-id"}`))
		}))
		defer server.Close()

		src := NewDelegatedSource(exchange.NewClient(server.URL, server.Client()))

		for i := 0; i < 2; i++ {
			got, err := src.Resolve(context.Background(), User)
			require.NoError(t, err)
			assert.Equal(t, "public-id", got.ClientID)
			assert.False(t, got.HasSecret())
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("remote failure is not configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to get Twitch credentials","message":"missing"}`))
		}))
		defer server.Close()

		_, err := NewDelegatedSource(exchange.NewClient(server.URL, server.Client())).Resolve(context.Background(), App)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("no exchange configured", func(t *testing.T) {
		_, err := NewDelegatedSource(nil).Resolve(context.Background(), App)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	src, err := New(ctx, Options{Mode: ModeEnv})
	require.NoError(t, err)
	assert.IsType(t, &EnvSource{}, src)

	_, err = New(ctx, Options{Mode: ModeDelegated})
	assert.Error(t, err)

	src, err = New(ctx, Options{Mode: ModeDelegated, Exchange: exchange.NewClient("http://localhost", nil)})
	require.NoError(t, err)
	assert.IsType(t, &DelegatedSource{}, src)

	src, err = New(ctx, Options{Mode: ModeParameterStore, ParameterAPI: &fakeParameterAPI{}})
	require.NoError(t, err)
	assert.IsType(t, &ParameterStoreSource{}, src)

	_, err = New(ctx, Options{Mode: "vault"})
	assert.ErrorContains(t, err, "unknown credentials mode")
}
