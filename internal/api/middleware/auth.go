package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/inventory-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/inventory-api/internal/pkg/jwthelper"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

var errMissingBearer = errors.New("missing bearer token")

type Authenticator struct {
	issuer *jwthelper.Issuer
}

func NewAuthenticator(issuer *jwthelper.Issuer) *Authenticator {
	return &Authenticator{
		issuer: issuer,
	}
}

// VerifyJWT rejects the request with 401 unless it carries a valid access
// token issued to the same user agent.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingBearer))
			return
		}

		claims, err := a.issuer.Parse(tokenStr, jwthelper.AccessToken, ctx.Request.UserAgent())
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(UserIDKey, claims.UserID)
		ctx.Next()
	}
}
