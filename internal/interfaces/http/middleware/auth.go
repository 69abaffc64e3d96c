package middleware

import (
	"strings"

	"github.com/YouSangSon/reports-service/internal/pkg/auth"
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ClaimsKey는 gin context에서 검증된 토큰 클레임을 저장하는 키입니다
const ClaimsKey = "auth_claims"

// TokenParser는 액세스 토큰을 검증합니다
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware는 Authorization 헤더의 Bearer 토큰을 검증합니다.
// 헤더가 없으면 익명 요청으로 통과시키고, 잘못된 토큰은 401로 거부합니다.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, auth.TokenType) || token == "" {
			_ = c.Error(errors.New(errors.ErrCodeUnauthorized, "malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireAuth는 인증되지 않은 요청을 401로 거부합니다
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentClaims(c) == nil {
			_ = c.Error(errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentClaims는 검증된 클레임을 반환합니다. 익명 요청이면 nil입니다.
func CurrentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// CurrentUsername은 인증된 사용자 이름을 반환합니다
func CurrentUsername(c *gin.Context) string {
	if claims := CurrentClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}

// CurrentUserID는 인증된 사용자 ID를 반환합니다
func CurrentUserID(c *gin.Context) string {
	if claims := CurrentClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}

// RequireAdmin은 관리자 목록에 있는 사용자만 통과시킵니다
func RequireAdmin(admins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(admins))
	for _, name := range admins {
		allowed[name] = struct{}{}
	}

	return func(c *gin.Context) {
		username := CurrentUsername(c)
		if username == "" {
			_ = c.Error(errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[username]; !ok {
			_ = c.Error(errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
