package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
)

const (
	appleIssuer      = "https://appleid.apple.com"
	appleKeyCacheTTL = time.Hour
)

type appleKeyResolver interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// appleKeySet fetches and caches Apple's signing keys. Apple rotates keys
// rarely; a miss on a known cache triggers one refetch before failing.
type appleKeySet struct {
	jwksURL    string
	httpClient *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func newAppleKeySet(jwksURL string, httpClient *http.Client) *appleKeySet {
	return &appleKeySet{
		jwksURL:    jwksURL,
		httpClient: httpClient,
	}
}

func (s *appleKeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.keys[kid]; ok && time.Since(s.fetchedAt) < appleKeyCacheTTL {
		return key, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := s.keys[kid]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown apple signing key")
	}
	return key, nil
}

type jwksDocument struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (s *appleKeySet) refreshLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.jwksURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build jwks request")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch apple jwks")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read apple jwks")
	}
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("apple jwks returned status %d", resp.StatusCode))
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode apple jwks")
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, raw := range doc.Keys {
		if raw.Kty != "RSA" {
			continue
		}
		key, err := parseRSAKey(raw.N, raw.E)
		if err != nil {
			continue
		}
		keys[raw.Kid] = key
	}
	if len(keys) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, "apple jwks contained no usable keys")
	}
	s.keys = keys
	s.fetchedAt = time.Now()
	return nil
}

func parseRSAKey(rawN, rawE string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(rawN)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(rawE)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

type appleIDTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func verifyAppleIDToken(ctx context.Context, keys appleKeyResolver, clientID, idToken string) (*appleIDTokenClaims, error) {
	if idToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id_token is required")
	}

	claims := &appleIDTokenClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("id_token missing kid header")
		}
		return keys.Key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(appleIssuer),
		jwt.WithAudience(clientID),
	)
	if err != nil || !token.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid apple id_token")
	}
	if claims.Subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "apple id_token has no subject")
	}
	return claims, nil
}
