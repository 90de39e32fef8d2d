package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/inventory-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/inventory-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/inventory-api/internal/service"
)

type UserHandler struct {
	authSvc AuthService
	svc     UserService
}

func NewUserHandler(authSvc AuthService, svc UserService) *UserHandler {
	return &UserHandler{
		authSvc: authSvc,
		svc:     svc,
	}
}

// renderUserErr maps uniqueness violations to field errors.
func renderUserErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUserUsernameExists):
		response.RenderErr(ctx, response.ErrFieldInvalid("username", service.ErrUserUsernameExists))
	case errors.Is(err, service.ErrUserEmailExists):
		response.RenderErr(ctx, response.ErrFieldInvalid("email", service.ErrUserEmailExists))
	case errors.Is(err, service.ErrUserNotFound):
		response.RenderErr(ctx, response.ErrUnauthorized(errUserGone))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.%s -> %w", op, err)))
	}
}

// HandleCreateUser godoc
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request   body      request.CreateUserRequest true "request body"
// @Success      201      {object}   response.User
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/ [post]
func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	var req request.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.authSvc.Signup(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		renderUserErr(ctx, "HandleCreateUser -> h.authSvc.Signup", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.NewUser(user))
}

// HandleListUsers godoc
// @Summary      List users visible to the caller
// @Description  Only the caller's own record is returned.
// @Tags         users
// @Produce      json
// @Success      200      {array}    response.User
// @Failure      401      {object}   response.Err
// @Router       /users/ [get]
// @Security BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, []response.User{response.NewUser(user)})
}

// HandleGetUser godoc
// @Summary      Get the caller's record
// @Description  The path id is ignored; a user can only see themselves.
// @Tags         users
// @Produce      json
// @Param        userID   path      int  true  "User ID"
// @Success      200      {object}   response.User
// @Failure      401      {object}   response.Err
// @Router       /users/{userID}/ [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, response.NewUser(user))
}

// HandleUpdateUser godoc
// @Summary      Update the caller's record
// @Description  PUT replaces username and email, PATCH only writes the fields given. A password is re-hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userID   path      int  true  "User ID"
// @Param        request  body      request.UpdateUserRequest true "request body"
// @Success      200      {object}   response.User
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID}/ [put]
// @Router       /users/{userID}/ [patch]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateUser(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(ctx.Request.Method == http.MethodPatch); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateUser(ctx.Request.Context(), user.ID, req.ToPatch())
	if err != nil {
		renderUserErr(ctx, "HandleUpdateUser -> h.svc.UpdateUser", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewUser(updated))
}

// HandleDeleteUser godoc
// @Summary      Delete the caller's account
// @Description  Every item owned by the caller and its change log go with it.
// @Tags         users
// @Param        userID   path      int  true  "User ID"
// @Success      204
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID}/ [delete]
// @Security BearerAuth
func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteUser(ctx.Request.Context(), user.ID); err != nil {
		renderUserErr(ctx, "HandleDeleteUser -> h.svc.DeleteUser", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
