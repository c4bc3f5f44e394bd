package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"streamkit/pkg/logging"
	"streamkit/pkg/oauth"
)

// maxRequestBody caps the size of a user-token-exchange request body.
const maxRequestBody = 64 << 10

// TokenIssuer performs the upstream grants on behalf of the handlers.
// *oauth.Client satisfies it.
type TokenIssuer interface {
	ClientCredentials(ctx context.Context, clientID, clientSecret string, scopes []string) (*oauth.Token, error)
	ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*oauth.Token, error)
	RefreshToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*oauth.Token, error)
}

// ServerCredentials returns the client id and secret held on the server side.
type ServerCredentials func(ctx context.Context) (clientID, clientSecret string, err error)

// ErrServerCredentialsMissing is reported when the server side has no client id or secret.
var ErrServerCredentialsMissing = errors.New("missing client credentials in server environment")

// CredentialHandler serves GET /credential-exchange: it mints an app token with the
// server-held secret and returns it together with the client id.
type CredentialHandler struct {
	issuer TokenIssuer
	creds  ServerCredentials
}

// NewCredentialHandler creates the credential-exchange handler.
func NewCredentialHandler(issuer TokenIssuer, creds ServerCredentials) *CredentialHandler {
	return &CredentialHandler{issuer: issuer, creds: creds}
}

func (h *CredentialHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", r.Method)
		return
	}

	resp, err := h.mint(r.Context())
	if err != nil {
		logging.Error("Exchange", err, "credential exchange failed")
		writeError(w, http.StatusInternalServerError, "Failed to get Twitch credentials", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *CredentialHandler) mint(ctx context.Context) (*CredentialResponse, error) {
	clientID, clientSecret, err := serverCredentials(ctx, h.creds)
	if err != nil {
		return nil, err
	}

	tok, err := h.issuer.ClientCredentials(ctx, clientID, clientSecret, nil)
	if err != nil {
		return nil, err
	}

	return &CredentialResponse{AccessToken: tok.AccessToken, ClientID: clientID}, nil
}

// UserTokenHandler serves POST /user-token-exchange: it performs an authorization-code
// or refresh grant with the server-held secret and forwards the upstream payload.
type UserTokenHandler struct {
	issuer TokenIssuer
	creds  ServerCredentials
}

// NewUserTokenHandler creates the user-token-exchange handler.
func NewUserTokenHandler(issuer TokenIssuer, creds ServerCredentials) *UserTokenHandler {
	return &UserTokenHandler{issuer: issuer, creds: creds}
}

func (h *UserTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", r.Method)
		return
	}

	tok, err := h.exchange(r)
	if err != nil {
		logging.Error("Exchange", err, "user token exchange failed")
		writeError(w, http.StatusInternalServerError, "Failed to process Twitch user token request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tok)
}

func (h *UserTokenHandler) exchange(r *http.Request) (*oauth.Token, error) {
	var req UserTokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	grant, err := req.Decode()
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	clientID, clientSecret, err := serverCredentials(ctx, h.creds)
	if err != nil {
		return nil, err
	}

	switch g := grant.(type) {
	case AuthorizationCode:
		return h.issuer.ExchangeCode(ctx, clientID, clientSecret, g.Code, g.RedirectURI)
	case RefreshToken:
		return h.issuer.RefreshToken(ctx, clientID, clientSecret, g.RefreshToken)
	default:
		return nil, fmt.Errorf("unsupported grant %T", grant)
	}
}

func serverCredentials(ctx context.Context, creds ServerCredentials) (string, string, error) {
	if creds == nil {
		return "", "", ErrServerCredentialsMissing
	}
	clientID, clientSecret, err := creds(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrServerCredentialsMissing, err)
	}
	if clientID == "" || clientSecret == "" {
		return "", "", ErrServerCredentialsMissing
	}
	return clientID, clientSecret, nil
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeError(w http.ResponseWriter, status int, errMsg, message string) {
	writeJSON(w, status, ErrorResponse{Error: errMsg, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Exchange", "failed to write response: %v", err)
	}
}
