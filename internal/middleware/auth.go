package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/model"
)

// Claims carries the caller identity inside an access token. Tokens are
// issued by the identity service; this API only verifies them.
type Claims struct {
	jwt.RegisteredClaims
	ClinicID       string `json:"clinic_id,omitempty"`
	Role           string `json:"role"`
	ProfessionalID string `json:"professional_id,omitempty"`
}

type AuthMiddleware struct {
	secret []byte
	issuer string
}

func NewAuthMiddleware(secret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), issuer: issuer}
}

// Authenticate verifies the bearer token and stores the caller in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			return
		}

		caller, err := m.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			return
		}

		handler.SetCaller(c, caller)
		c.Next()
	}
}

// ParseToken validates an HS256 token and converts its claims to a Caller.
func (m *AuthMiddleware) ParseToken(token string) (model.Caller, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...); err != nil {
		return model.Caller{}, err
	}
	return claims.caller()
}

func (c Claims) caller() (model.Caller, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return model.Caller{}, fmt.Errorf("invalid subject: %w", err)
	}

	caller := model.Caller{UserID: userID, Role: model.Role(c.Role)}
	switch caller.Role {
	case model.RoleAdmin, model.RolePatient:
	case model.RoleProfessional:
		if caller.ProfessionalID, err = uuid.Parse(c.ProfessionalID); err != nil {
			return model.Caller{}, errors.New("professional token without professional_id")
		}
	default:
		return model.Caller{}, fmt.Errorf("unknown role %q", c.Role)
	}

	if c.ClinicID != "" {
		if caller.ClinicID, err = uuid.Parse(c.ClinicID); err != nil {
			return model.Caller{}, fmt.Errorf("invalid clinic_id: %w", err)
		}
	}
	return caller, nil
}

// SignToken issues a token for caller. Used by tests and local tooling.
func (m *AuthMiddleware) SignToken(caller model.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(caller.Role),
	}
	if caller.ClinicID != uuid.Nil {
		claims.ClinicID = caller.ClinicID.String()
	}
	if caller.ProfessionalID != uuid.Nil {
		claims.ProfessionalID = caller.ProfessionalID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}
