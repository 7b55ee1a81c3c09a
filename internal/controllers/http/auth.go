package http

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const requesterKey = "requester"

// Claims are issued by the auth service; Subject carries the user ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Protect rejects requests without a valid HS256 bearer token and stores
// the caller as a domain.Requester on the context.
func Protect(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			abort(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || claims.Subject == "" {
			if err == nil {
				err = errors.New("token has no subject")
			}
			_ = c.Error(err)
			abort(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		role := domain.Role(claims.Role)
		if role == "" {
			role = domain.RoleUser
		}
		c.Set(requesterKey, domain.Requester{UserID: claims.Subject, Role: role})
		c.Next()
	}
}

// Authorize must run after Protect.
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := requester(c)
		if !slices.Contains(roles, req.Role) {
			abort(c, http.StatusForbidden, fmt.Sprintf("User role %s is not authorized to access this route", req.Role))
			return
		}
		c.Next()
	}
}

func requester(c *gin.Context) domain.Requester {
	v, _ := c.Get(requesterKey)
	r, _ := v.(domain.Requester)
	return r
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: msg})
}
