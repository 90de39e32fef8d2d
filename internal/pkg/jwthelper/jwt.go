package jwthelper

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	ErrInvalidToken   = errors.New("token is invalid or expired")
	ErrWrongTokenType = errors.New("token has the wrong type")
	ErrUserAgent      = errors.New("token was issued to another user agent")
)

type Claims struct {
	UserID    uint      `json:"user_id"`
	TokenType TokenType `json:"token_type"`
	UserAgent string    `json:"user_agent"`
	jwt.RegisteredClaims
}

type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer signs HS256 tokens bound to a user id and the user agent that
// requested them.
type Issuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(key []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *Issuer) GeneratePair(userID uint, userAgent string) (Pair, error) {
	access, err := i.generate(userID, userAgent, AccessToken, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := i.generate(userID, userAgent, RefreshToken, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

func (i *Issuer) GenerateAccess(userID uint, userAgent string) (string, error) {
	return i.generate(userID, userAgent, AccessToken, i.accessTTL)
}

func (i *Issuer) generate(userID uint, userAgent string, typ TokenType, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:    userID,
		TokenType: typ,
		UserAgent: userAgent,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return signed, nil
}

// Parse verifies signature, expiry, type and user agent.
func (i *Issuer) Parse(tokenStr string, want TokenType, userAgent string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != want {
		return nil, ErrWrongTokenType
	}
	if claims.UserAgent != userAgent {
		return nil, ErrUserAgent
	}

	return claims, nil
}
