// Package auth validates the bearer tokens the SPA sends with every API call.
// Two modes: "keycloak" introspects tokens against a Keycloak realm, "local"
// verifies HMAC-signed tokens minted by internal tooling.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonhttp "hiresphere-backend/internal/common/http"
)

// Principal is the authenticated caller attached to request context.
type Principal struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

// TokenVerifier validates a bearer token and returns the caller.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// ==========================
// Keycloak introspection
// ==========================

// KeycloakVerifier validates tokens via Keycloak's token introspection endpoint.
type KeycloakVerifier struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *commonhttp.Client
}

func NewKeycloakVerifier(baseURL, realm, clientID, clientSecret string) *KeycloakVerifier {
	return &KeycloakVerifier{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   commonhttp.NewClient(10 * time.Second),
	}
}

type introspectionResponse struct {
	Active   bool   `json:"active"`
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Username string `json:"preferred_username"`
	Realm    struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

func (k *KeycloakVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("token", token)
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", introspectURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create introspection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute introspection request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("keycloak introspection failed with status %d: %s", resp.StatusCode, string(body))
	}

	var ir introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, fmt.Errorf("failed to decode introspection response: %w", err)
	}

	if !ir.Active {
		return nil, fmt.Errorf("token is not active")
	}

	return &Principal{
		Subject: ir.Sub,
		Email:   ir.Email,
		Roles:   ir.Realm.Roles,
	}, nil
}

// ==========================
// Local HMAC tokens
// ==========================

// LocalVerifier validates HS256 tokens of the form base64(payload).base64(sig).
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret)}
}

type localClaims struct {
	Sub   string   `json:"sub"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	Exp   int64    `json:"exp"`
	Iat   int64    `json:"iat"`
}

// Mint creates a signed token, used by dev tooling and tests.
func (v *LocalVerifier) Mint(p *Principal, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := localClaims{
		Sub:   p.Subject,
		Email: p.Email,
		Roles: p.Roles,
		Exp:   now.Add(ttl).Unix(),
		Iat:   now.Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + v.sign(encoded), nil
}

func (v *LocalVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed token")
	}

	expected := v.sign(parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return nil, fmt.Errorf("invalid token signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed token payload: %w", err)
	}

	var claims localClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("malformed token claims: %w", err)
	}

	if claims.Exp > 0 && time.Now().UTC().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}

	return &Principal{
		Subject: claims.Sub,
		Email:   claims.Email,
		Roles:   claims.Roles,
	}, nil
}

func (v *LocalVerifier) sign(encoded string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
