// Package auth는 비밀번호 해싱과 액세스 토큰 발급/검증을 제공합니다.
package auth

import (
	"fmt"
	"time"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType은 로그인 응답의 토큰 타입입니다
const TokenType = "bearer"

// 토큰 용도. 액세스 토큰과 리프레시 토큰은 서로 대신 쓸 수 없습니다.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Claims는 토큰 클레임입니다. Subject는 사용자 ID입니다.
type Claims struct {
	Username string `json:"username"`
	Use      string `json:"token_use"`
	jwt.RegisteredClaims
}

// Issuer는 HS256 액세스/리프레시 토큰을 발급하고 검증합니다
type Issuer struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer는 Issuer를 생성합니다. refreshTTL은 ttl보다 길어야 합니다.
func NewIssuer(secret, issuer string, ttl, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if refreshTTL <= ttl {
		return nil, fmt.Errorf("refresh token ttl must be longer than token ttl (%s), got %s", ttl, refreshTTL)
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, refreshTTL: refreshTTL, now: time.Now}, nil
}

// TTL은 액세스 토큰 유효 기간을 반환합니다
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue는 사용자 ID와 사용자 이름으로 서명된 액세스 토큰을 발급합니다
func (i *Issuer) Issue(userID, username string) (string, error) {
	return i.sign(userID, username, UseAccess, i.ttl)
}

// IssueRefresh는 액세스 토큰 재발급에만 쓰이는 리프레시 토큰을 발급합니다
func (i *Issuer) IssueRefresh(userID, username string) (string, error) {
	return i.sign(userID, username, UseRefresh, i.refreshTTL)
}

func (i *Issuer) sign(userID, username, use string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Username: username,
		Use:      use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", use, err)
	}
	return token, nil
}

// Parse는 액세스 토큰의 서명과 만료를 검증하고 클레임을 반환합니다
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	return i.parse(tokenString, UseAccess)
}

// ParseRefresh는 리프레시 토큰을 검증합니다
func (i *Issuer) ParseRefresh(tokenString string) (*Claims, error) {
	return i.parse(tokenString, UseRefresh)
}

// Verify는 용도와 관계없이 서명과 만료만 확인합니다
func (i *Issuer) Verify(tokenString string) error {
	_, err := i.parse(tokenString, "")
	return err
}

func (i *Issuer) parse(tokenString, use string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "invalid "+tokenName(use))
	}
	if !token.Valid {
		return nil, errors.New(errors.ErrCodeUnauthorized, "invalid "+tokenName(use))
	}
	if claims.Subject == "" || claims.Username == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, tokenName(use)+" is missing subject")
	}
	if use != "" && claims.Use != use {
		return nil, errors.New(errors.ErrCodeUnauthorized, "invalid "+tokenName(use)).
			WithDetails(fmt.Sprintf("expected %s token, got %q", use, claims.Use))
	}
	return claims, nil
}

func tokenName(use string) string {
	if use == "" {
		return "token"
	}
	return use + " token"
}
