package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"certprep-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by tokens from the external identity provider.
type Claims struct {
	ClientID string `json:"client_id"`
	TokenUse string `json:"token_use"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// KeyCache is a read-through cache of the issuer's public keys, keyed by kid.
// It is injected rather than held as package state so tests can substitute it
// and operators can invalidate it explicitly.
type KeyCache interface {
	Get(kid string) (*rsa.PublicKey, bool)
	Put(kid string, key *rsa.PublicKey)
	Invalidate()
}

type memoryKeyCache struct {
	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewMemoryKeyCache returns an in-process KeyCache.
func NewMemoryKeyCache() KeyCache {
	return &memoryKeyCache{keys: make(map[string]*rsa.PublicKey)}
}

func (c *memoryKeyCache) Get(kid string) (*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	return key, ok
}

func (c *memoryKeyCache) Put(kid string, key *rsa.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[kid] = key
}

func (c *memoryKeyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = make(map[string]*rsa.PublicKey)
}

// Verifier validates tokens issued by the external identity provider. It
// checks signature, issuer, expiry, the token_use discriminator and the
// client id before supplying the verified user id downstream.
type Verifier struct {
	jwksURL    string
	issuer     string
	clientID   string
	tokenUse   string
	cache      KeyCache
	httpClient *http.Client

	refreshMu sync.Mutex
}

func NewVerifier(cfg *config.Config, cache KeyCache) *Verifier {
	if cache == nil {
		cache = NewMemoryKeyCache()
	}
	return &Verifier{
		jwksURL:    cfg.JWKSURL,
		issuer:     cfg.TokenIssuer,
		clientID:   cfg.TokenClientID,
		tokenUse:   cfg.TokenUse,
		cache:      cache,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify parses and validates a bearer token, returning its claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing key id")
		}

		if key, ok := v.cache.Get(kid); ok {
			return key, nil
		}

		// Unknown kid: refresh the issuer's key set once, then give up.
		if err := v.refreshKeys(ctx); err != nil {
			return nil, err
		}
		if key, ok := v.cache.Get(kid); ok {
			return key, nil
		}
		return nil, fmt.Errorf("unknown key id %q", kid)
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.TokenUse != v.tokenUse {
		return nil, fmt.Errorf("unexpected token_use %q", claims.TokenUse)
	}

	if claims.ClientID != v.clientID {
		return nil, errors.New("token issued for a different client")
	}

	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}

	return claims, nil
}

type jwksDocument struct {
	Keys []struct {
		Kid string `json:"kid"`
		Kty string `json:"kty"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

// refreshKeys fetches the issuer's JWKS and repopulates the cache.
func (v *Verifier) refreshKeys(ctx context.Context) error {
	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		key, err := parseRSAKey(k.N, k.E)
		if err != nil {
			continue
		}
		v.cache.Put(k.Kid, key)
	}

	return nil
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("bad modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("bad exponent: %w", err)
	}

	exponent := 0
	for _, b := range eBytes {
		exponent = exponent<<8 | int(b)
	}
	if exponent == 0 {
		return nil, errors.New("zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}, nil
}
