package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"certprep-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type testIssuer struct {
	key    *rsa.PrivateKey
	kid    string
	server *httptest.Server
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	iss := &testIssuer{key: key, kid: "test-key-1"}
	iss.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]string{{
				"kid": iss.kid,
				"kty": "RSA",
				"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(iss.server.Close)

	return iss
}

func (iss *testIssuer) sign(t *testing.T, claims *Claims, kid string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(iss.key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func testClaims(issuer string) *Claims {
	return &Claims{
		ClientID: "client-abc",
		TokenUse: "access",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func newTestVerifier(iss *testIssuer) *Verifier {
	return NewVerifier(&config.Config{
		JWKSURL:       iss.server.URL,
		TokenIssuer:   "https://issuer.example.com",
		TokenClientID: "client-abc",
		TokenUse:      "access",
	}, nil)
}

func TestVerifyValidToken(t *testing.T) {
	iss := newTestIssuer(t)
	v := newTestVerifier(iss)

	token := iss.sign(t, testClaims("https://issuer.example.com"), iss.kid)

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %s", claims.Username)
	}
}

func TestVerifyRejections(t *testing.T) {
	iss := newTestIssuer(t)

	expired := testClaims("https://issuer.example.com")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := testClaims("https://evil.example.com")

	wrongUse := testClaims("https://issuer.example.com")
	wrongUse.TokenUse = "id"

	wrongClient := testClaims("https://issuer.example.com")
	wrongClient.ClientID = "someone-else"

	noSubject := testClaims("https://issuer.example.com")
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"expired token", iss.sign(t, expired, iss.kid)},
		{"wrong issuer", iss.sign(t, wrongIssuer, iss.kid)},
		{"wrong token use", iss.sign(t, wrongUse, iss.kid)},
		{"wrong client id", iss.sign(t, wrongClient, iss.kid)},
		{"missing subject", iss.sign(t, noSubject, iss.kid)},
		{"unknown key id", iss.sign(t, testClaims("https://issuer.example.com"), "no-such-kid")},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(iss)
			if _, err := v.Verify(context.Background(), tt.token); err == nil {
				t.Error("expected rejection")
			}
		})
	}
}

func TestVerifyRefreshesKeysOnUnknownKid(t *testing.T) {
	iss := newTestIssuer(t)
	v := newTestVerifier(iss)

	// Warm the cache, then rotate the key id on the issuer side.
	token := iss.sign(t, testClaims("https://issuer.example.com"), iss.kid)
	if _, err := v.Verify(context.Background(), token); err != nil {
		t.Fatalf("initial verify failed: %v", err)
	}

	iss.kid = "test-key-2"
	rotated := iss.sign(t, testClaims("https://issuer.example.com"), iss.kid)

	claims, err := v.Verify(context.Background(), rotated)
	if err != nil {
		t.Fatalf("expected refresh to pick up rotated key, got %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("unexpected subject %s", claims.Subject)
	}
}

func TestMemoryKeyCacheInvalidate(t *testing.T) {
	cache := NewMemoryKeyCache()
	cache.Put("k1", &rsa.PublicKey{N: big.NewInt(1), E: 65537})

	if _, ok := cache.Get("k1"); !ok {
		t.Fatal("expected cached key")
	}

	cache.Invalidate()
	if _, ok := cache.Get("k1"); ok {
		t.Fatal("expected cache cleared")
	}
}
