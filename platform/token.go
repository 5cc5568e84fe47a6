package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hyunw00/attendbot/config"
)

// refreshMargin forces a refresh slightly before the token actually expires.
const refreshMargin = 60 * time.Second

// TokenSource exchanges a signed service-account assertion for a bearer token
// and caches it in memory. Safe for concurrent use.
type TokenSource struct {
	cfg config.AppConfig
	hc  *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource builds a token source from the loaded configuration.
func NewTokenSource(cfg config.AppConfig) *TokenSource {
	return &TokenSource{
		cfg: cfg,
		hc:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns a cached bearer token, refreshing it when less than a minute
// of validity remains.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expiresAt.Add(-refreshMargin)) {
		return ts.token, nil
	}

	assertion, err := ts.buildAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type":    {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"client_id":     {ts.cfg.WorksClientID},
		"client_secret": {ts.cfg.WorksClientSecret},
		"assertion":     {assertion},
		"scope":         {ts.cfg.WorksScope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.cfg.WorksAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("token response decode: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}

	ts.token = tr.AccessToken
	ts.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return ts.token, nil
}

// buildAssertion signs a one-hour RS256 JWT with issuer/subject claims.
func (ts *TokenSource) buildAssertion() (string, error) {
	if ts.cfg.WorksClientID == "" || ts.cfg.WorksServiceAccount == "" || ts.cfg.WorksPrivateKey == "" {
		return "", fmt.Errorf("platform credentials missing: client id, service account and private key are required")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.cfg.WorksPrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse platform private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": ts.cfg.WorksClientID,
		"sub": ts.cfg.WorksServiceAccount,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}
