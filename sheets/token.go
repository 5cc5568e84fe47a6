package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/hyunw00/attendbot/config"
)

// TokenSource wraps the oauth2 service-account JWT grant for the spreadsheet
// API. The underlying source caches tokens and refreshes them before expiry,
// so callers just ask for the current one.
type TokenSource struct {
	cfg config.AppConfig

	mu  sync.Mutex
	src oauth2.TokenSource
}

// NewTokenSource builds a token source from the loaded configuration.
// Credential checks are deferred until the first Token call.
func NewTokenSource(cfg config.AppConfig) *TokenSource {
	return &TokenSource{cfg: cfg}
}

// Token returns a bearer token for the spreadsheet API.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	src, err := ts.source()
	if err != nil {
		return "", err
	}
	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("sheets token request failed: %w", err)
	}
	return tok.AccessToken, nil
}

func (ts *TokenSource) source() (oauth2.TokenSource, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.src != nil {
		return ts.src, nil
	}
	if ts.cfg.GoogleClientEmail == "" || ts.cfg.GooglePrivateKey == "" {
		return nil, fmt.Errorf("sheets credentials missing: client email and private key are required")
	}
	if !strings.Contains(ts.cfg.GooglePrivateKey, "BEGIN PRIVATE KEY") {
		return nil, fmt.Errorf("sheets private key is not in PEM PKCS#8 form")
	}

	conf := &jwt.Config{
		Email:        ts.cfg.GoogleClientEmail,
		PrivateKey:   []byte(ts.cfg.GooglePrivateKey),
		PrivateKeyID: ts.cfg.GooglePrivateKeyID,
		Scopes:       []string{"https://www.googleapis.com/auth/spreadsheets"},
		TokenURL:     ts.cfg.GoogleTokenURI,
	}
	// the source outlives any single request, so it gets its own context
	ts.src = conf.TokenSource(context.Background())
	return ts.src, nil
}
