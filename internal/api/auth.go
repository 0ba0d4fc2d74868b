package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type authClaims struct {
	jwt.RegisteredClaims
}

// BuildToken signs a bearer token for userID valid for ttl from now.
func BuildToken(secretKey []byte, userID string, now time.Time, ttl time.Duration) (string, error) {
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

func (handler *Handler) parseToken(tokenValue string) (string, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		return handler.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// AuthRequired accepts a bearer token whose subject is the local user.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	rawToken, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(rawToken) == "" {
		return apiError(c, fiber.StatusUnauthorized, "missing bearer token")
	}

	subject, err := handler.parseToken(strings.TrimSpace(rawToken))
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, err.Error())
	}
	userID, err := handler.tracker.UserID()
	if err != nil {
		return respondError(c, err)
	}
	if subject != userID {
		return apiError(c, fiber.StatusForbidden, "token belongs to another user")
	}

	c.Locals(contextUserKey, subject)
	return c.Next()
}
