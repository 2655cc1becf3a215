// Package token issues and verifies the signed session tokens used for
// API authentication. Tokens are stateless; revocation on logout is
// handled by the cache layer's denylist.
package token

import (
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim. Access and refresh tokens are
// cryptographically distinguished so a refresh token cannot be presented
// where an access token is expected.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the token payload: registered claims plus the token type.
type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256-signed session tokens. It is immutable
// after construction and safe for concurrent use.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates a token Issuer with the given process-wide secret and TTLs.
func NewIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the lifetime of issued access tokens.
func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// IssueAccessToken mints a short-lived access token for the user.
func (i *Issuer) IssueAccessToken(userID uint) (string, error) {
	return i.issue(userID, TypeAccess, i.accessTTL)
}

// IssueRefreshToken mints a refresh token for the user. Refresh tokens are
// used solely to mint new access tokens; refreshing never re-issues one.
func (i *Issuer) IssueRefreshToken(userID uint) (string, error) {
	return i.issue(userID, TypeRefresh, i.refreshTTL)
}

func (i *Issuer) issue(userID uint, typ string, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", fmt.Errorf("token secret not configured")
	}

	now := time.Now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    i.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// VerifyAccessToken validates an access token and returns the subject user ID.
func (i *Issuer) VerifyAccessToken(raw string) (uint, error) {
	claims, err := i.verify(raw, TypeAccess)
	if err != nil {
		return 0, err
	}
	return subjectID(claims)
}

// VerifyRefreshToken validates a refresh token and returns the subject user
// ID together with the token's jti, so callers can denylist it on logout.
func (i *Issuer) VerifyRefreshToken(raw string) (uint, *Claims, error) {
	claims, err := i.verify(raw, TypeRefresh)
	if err != nil {
		return 0, nil, err
	}
	userID, err := subjectID(claims)
	if err != nil {
		return 0, nil, err
	}
	return userID, claims, nil
}

func (i *Issuer) verify(raw, wantType string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, models.NewInvalidTokenError("invalid or expired token")
	}
	if claims.TokenType != wantType {
		return nil, models.NewInvalidTokenError("token type mismatch")
	}
	return claims, nil
}

func subjectID(claims *Claims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, models.NewInvalidTokenError("invalid token subject")
	}
	return uint(id), nil
}
