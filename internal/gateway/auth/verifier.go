// Package auth verifies hosted identity provider sessions. The portal never
// handles passwords; the frontend signs in against the provider and the API
// resolves the resulting session token to an identity.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aurasutra/patient-api/internal/domain/patient"
)

// Config holds provider settings.
type Config struct {
	// IssuerURL is the provider base URL; userinfo lives at /oauth/userinfo.
	IssuerURL string
	Timeout   time.Duration
	// CacheTTL bounds how long a verified token is trusted without re-checking.
	CacheTTL time.Duration
}

// Verifier resolves session tokens against the provider's userinfo endpoint.
// Verified tokens are cached briefly so a burst of dashboard requests does
// not hammer the provider.
type Verifier struct {
	config Config
	http   *http.Client
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]cachedIdentity
}

type cachedIdentity struct {
	identity *patient.Identity
	expires  time.Time
}

// NewVerifier creates a session verifier.
func NewVerifier(cfg Config, logger *zap.Logger) *Verifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 1 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		cache:  make(map[string]cachedIdentity),
	}
}

// Verify resolves a session token to the provider identity.
func (v *Verifier) Verify(ctx context.Context, token string) (*patient.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("empty session token")
	}

	v.mu.RLock()
	cached, ok := v.cache[token]
	v.mu.RUnlock()
	if ok && time.Now().Before(cached.expires) {
		return cached.identity, nil
	}

	identity, err := v.fetchUserinfo(ctx, token)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.cache[token] = cachedIdentity{identity: identity, expires: time.Now().Add(v.config.CacheTTL)}
	// Expired entries pile up if nobody evicts; sweep opportunistically.
	if len(v.cache) > 10000 {
		now := time.Now()
		for k, c := range v.cache {
			if now.After(c.expires) {
				delete(v.cache, k)
			}
		}
	}
	v.mu.Unlock()

	return identity, nil
}

func (v *Verifier) fetchUserinfo(ctx context.Context, token string) (*patient.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.config.IssuerURL+"/oauth/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("session rejected by provider")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("read userinfo: %w", err)
	}

	var info struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo missing subject")
	}

	return &patient.Identity{
		ID:         info.Sub,
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}, nil
}
