package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/inventory-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/inventory-api/internal/api/middleware"
	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/service"
)

var errUserGone = errors.New("user of this token no longer exists")

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	UpdateUser(ctx context.Context, id uint, patch domain.UserPatch) (domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// getUserFromContext loads the principal set by the JWT middleware.
func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	raw, ok := ctx.Get(middleware.UserIDKey)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("no authenticated user"))
	}
	userID, ok := raw.(uint)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(fmt.Errorf("unexpected user id type %T", raw))
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(errUserGone)
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("getUserFromContext -> uSvc.GetUser -> %w", err))
	}

	return user, nil
}

// pathID parses a numeric path parameter. Anything that is not a positive
// integer is reported as not found.
func pathID(ctx *gin.Context, param, resource string) (uint, *response.Err) {
	raw := ctx.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, response.ErrNotFound(resource, "id", raw)
	}

	return uint(id), nil
}
