package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"taskboard/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// OwnerResolver resolves the board identity for every request and stores
// it under "owner" in the gin context. Handlers never trust a
// client-supplied owner.
//
// shared mode: every request maps to the configured board owner, gated by
// HTTP Basic auth when a password (or password hash) is configured.
// jwt mode: the owner is the subject claim of a Bearer token.
func OwnerResolver(cfg *config.Config) gin.HandlerFunc {
	if cfg.Board.AuthMode == config.AuthModeJWT {
		return jwtOwner(cfg)
	}
	return sharedOwner(cfg)
}

func sharedOwner(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.BasicAuthPass != "" || cfg.Auth.BasicAuthPassHash != "" {
			user, pass, ok := basicCredentials(c.GetHeader("Authorization"))
			if !ok || user != cfg.Auth.BasicAuthUser || !passwordMatches(cfg, pass) {
				c.Header("WWW-Authenticate", `Basic realm="`+cfg.Auth.Realm+`"`)
				c.Header("Cache-Control", "no-store")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "authentication required",
				})
				return
			}
		}
		c.Set("owner", cfg.Board.Owner)
		c.Next()
	}
}

func basicCredentials(header string) (string, string, bool) {
	if !strings.HasPrefix(header, "Basic ") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return "", "", false
	}
	user, pass, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return user, pass, true
}

func passwordMatches(cfg *config.Config, pass string) bool {
	if cfg.Auth.BasicAuthPassHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.Auth.BasicAuthPassHash), []byte(pass)) == nil
	}
	return pass == cfg.Auth.BasicAuthPass
}

func jwtOwner(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "bearer token required",
			})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Auth.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid claims",
			})
			return
		}

		owner := claimString(claims, "sub")
		if owner == "" {
			owner = claimString(claims, "user_id")
		}
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "token carries no identity",
			})
			return
		}

		c.Set("owner", owner)
		c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
