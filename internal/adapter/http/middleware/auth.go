package middleware

import (
	"net/http"
	"strings"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

const (
	principalKey = "principal"
)

var (
	errMissingToken = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Missing bearer token", http.StatusUnauthorized)
	errInvalidToken = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Invalid or expired token", http.StatusUnauthorized)
	errForbidden    = pkg.NewDomainErrorSimple("FORBIDDEN", "Role not allowed for this operation", http.StatusForbidden)
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   entities.Role
}

func (p Principal) Is(role entities.Role) bool {
	return p.Role == role
}

// Claims carries the caller's id in sub and its role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates HS256 bearer tokens and stores the Principal in the context.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(errMissingToken.HTTPStatus, errMissingToken.ToHTTPError())
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil {
			log.WithField("request_id", GetRequestID(c)).WithError(err).Debug("[http][auth] token rejected")
			c.AbortWithStatusJSON(errInvalidToken.HTTPStatus, errInvalidToken.ToHTTPError())
			return
		}

		role, ok := entities.ParseRole(strings.ToUpper(strings.TrimSpace(claims.Role)))
		if !ok || strings.TrimSpace(claims.Subject) == "" {
			c.AbortWithStatusJSON(errInvalidToken.HTTPStatus, errInvalidToken.ToHTTPError())
			return
		}

		c.Set(principalKey, Principal{UserID: claims.Subject, Role: role})
		c.Next()
	}
}

// RequireRoles lets the request through only when the principal has one of roles.
// It must run after Auth.
func RequireRoles(roles ...entities.Role) gin.HandlerFunc {
	allowed := make(map[entities.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(errMissingToken.HTTPStatus, errMissingToken.ToHTTPError())
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			c.AbortWithStatusJSON(errForbidden.HTTPStatus, errForbidden.ToHTTPError())
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) (Principal, bool) {
	if c == nil {
		return Principal{}, false
	}
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// SetPrincipal is used by handler tests to skip token parsing.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// IssueToken signs a token for userID with role, valid for ttl from now.
func IssueToken(secret, userID string, role entities.Role, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
