package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
)

const firebaseIssuerPrefix = "https://securetoken.google.com/"

// FirebaseClaims are the claims of a Firebase ID token
type FirebaseClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	AuthTime      int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// FirebaseVerifier validates Firebase ID tokens against Google's published
// signing keys. Keys are cached and refetched after refresh, or when a token
// names a key id that is not in the cached set.
type FirebaseVerifier struct {
	projectID  string
	jwksURL    string
	refresh    time.Duration
	httpClient *http.Client

	mu        sync.RWMutex
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time
	now       func() time.Time
}

// NewFirebaseVerifier creates a verifier for tokens issued to projectID
func NewFirebaseVerifier(projectID, jwksURL string, refresh time.Duration, httpClient *http.Client) *FirebaseVerifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &FirebaseVerifier{
		projectID:  projectID,
		jwksURL:    jwksURL,
		refresh:    refresh,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Verify implements Verifier
func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	if v.projectID == "" {
		return nil, fmt.Errorf("firebase project id not configured: %w", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &FirebaseClaims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, ErrInvalidToken
		}
		return v.publicKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(firebaseIssuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*FirebaseClaims)
	if !ok || !token.Valid || claims.Subject == "" || len(claims.Subject) > 128 {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

func (v *FirebaseVerifier) publicKey(ctx context.Context, kid string) (interface{}, error) {
	if key, ok := v.cachedKey(kid, false); ok {
		return key, nil
	}
	if err := v.fetchKeys(ctx); err != nil {
		return nil, err
	}
	if key, ok := v.cachedKey(kid, true); ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown signing key %q: %w", kid, ErrInvalidToken)
}

func (v *FirebaseVerifier) cachedKey(kid string, ignoreAge bool) (interface{}, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.keys == nil {
		return nil, false
	}
	if !ignoreAge && v.refresh > 0 && v.now().Sub(v.fetchedAt) > v.refresh {
		return nil, false
	}
	for _, key := range v.keys.Key(kid) {
		if key.Valid() && key.IsPublic() {
			return key.Key, true
		}
	}
	return nil, false
}

func (v *FirebaseVerifier) fetchKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing keys: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read signing keys: %w", err)
	}
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return fmt.Errorf("decode signing keys: %w", err)
	}

	v.mu.Lock()
	v.keys = &set
	v.fetchedAt = v.now()
	v.mu.Unlock()
	return nil
}
