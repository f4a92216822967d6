package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthAPIKey sends an API key header.
	AuthAPIKey
)

// AuthConfig configures outbound request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the bearer token (AuthBearer).
	Token string
	// Username and Password are the basic auth credentials (AuthBasic).
	Username string
	Password string
	// Key is the API key value (AuthAPIKey).
	Key string
	// Header is the API key header name. Defaults to "X-API-Key".
	Header string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key}
}

// apply sets authentication on an outbound request.
func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		header := a.Header
		if header == "" {
			header = "X-API-Key"
		}
		req.Header.Set(header, a.Key)
	}
}
