package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

// TokenType discriminates access tokens from refresh tokens. The type is
// embedded in the claims and each type is signed with its own secret, so a
// token of one type can never verify as the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	// ErrInvalidToken indicates the token is malformed or its signature does not verify.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the token elapsed its validity window.
	ErrTokenExpired = errors.New("token expired")
	// ErrWrongTokenType indicates a structurally valid token of the wrong type was presented.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims augments registered claims with tenant and session context. Roles
// and permissions are computed at issuance and trusted for the token's
// lifetime.
type Claims struct {
	UserID      string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	TenantID    string    `json:"tid"`
	SessionID   string    `json:"sid"`
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"perms,omitempty"`
	TokenType   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair bundles the credentials returned by a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// IssueInput carries the identity embedded into a token pair.
type IssueInput struct {
	UserID      string
	Email       string
	TenantID    string
	SessionID   string
	Roles       []string
	Permissions []string
}

// TokenIssuer mints and validates HMAC-signed JWTs.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenIssuer validates the signing material and constructs an issuer.
func NewTokenIssuer(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(accessSecret) == "" || strings.TrimSpace(refreshSecret) == "" {
		return nil, fmt.Errorf("signing secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("access and refresh secrets must differ")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the internal clock for deterministic tests.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	if now != nil {
		i.now = now
	}
	return i
}

// AccessTTL returns the configured access token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// Issue mints an access/refresh token pair referencing the same session.
func (i *TokenIssuer) Issue(input IssueInput) (TokenPair, error) {
	if input.UserID == "" {
		return TokenPair{}, fmt.Errorf("user id is required")
	}
	if input.SessionID == "" {
		return TokenPair{}, fmt.Errorf("session id is required")
	}

	access, err := i.sign(input, TokenTypeAccess, i.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := i.sign(input, TokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(i.accessTTL.Seconds()),
	}, nil
}

func (i *TokenIssuer) sign(input IssueInput, typ TokenType, ttl time.Duration) (string, error) {
	now := i.now()

	claims := Claims{
		UserID:      input.UserID,
		Email:       input.Email,
		TenantID:    input.TenantID,
		SessionID:   input.SessionID,
		Roles:       input.Roles,
		Permissions: input.Permissions,
		TokenType:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.UserID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secretFor(typ))
}

func (i *TokenIssuer) secretFor(typ TokenType) []byte {
	if typ == TokenTypeRefresh {
		return i.refreshSecret
	}
	return i.accessSecret
}

// Verify checks signature, expiry, and the type discriminator. A token of the
// wrong type that otherwise verifies fails with ErrWrongTokenType rather than
// a generic invalid error.
func (i *TokenIssuer) Verify(raw string, expected TokenType) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		// The claimed type selects the verification secret. A token lying
		// about its type fails signature verification.
		switch claims.TokenType {
		case TokenTypeAccess, TokenTypeRefresh:
			return i.secretFor(claims.TokenType), nil
		default:
			return nil, fmt.Errorf("unknown token type %q", claims.TokenType)
		}
	}, jwt.WithIssuer(i.issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != expected {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

// Remaining returns how long the claims stay valid from the supplied moment.
// Used to size revocation entries to the token's residual lifetime.
func (c *Claims) Remaining(at time.Time) time.Duration {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	remaining := c.ExpiresAt.Time.Sub(at)
	if remaining < 0 {
		return 0
	}
	return remaining
}
