package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/inventory-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/inventory-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/pkg/jwthelper"
	"github.com/vietanh2810/inventory-api/internal/service"
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, username, password string) (domain.User, error)
}

type AuthHandler struct {
	issuer *jwthelper.Issuer
	svc    AuthService
	uSvc   UserService
}

func NewAuthHandler(issuer *jwthelper.Issuer, svc AuthService, uSvc UserService) *AuthHandler {
	return &AuthHandler{
		issuer: issuer,
		svc:    svc,
		uSvc:   uSvc,
	}
}

// HandleToken godoc
// @Summary      Obtain an access and a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.TokenRequest true "request body"
// @Success      200      {object}   response.TokenPair
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      429      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /token/ [post]
func (h *AuthHandler) HandleToken(ctx *gin.Context) {
	var req request.TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))
			return
		}

		err = fmt.Errorf("v1.HandleToken -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	pair, err := h.issuer.GeneratePair(user.ID, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleToken -> h.issuer.GeneratePair -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.TokenPair{
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}

// HandleRefresh godoc
// @Summary      Exchange a refresh token for a new access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request   body      request.RefreshRequest true "request body"
// @Success      200      {object}   response.AccessToken
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /token/refresh/ [post]
func (h *AuthHandler) HandleRefresh(ctx *gin.Context) {
	var req request.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	claims, err := h.issuer.Parse(req.Refresh, jwthelper.RefreshToken, ctx.Request.UserAgent())
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err))
		return
	}

	user, err := h.uSvc.GetUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrUnauthorized(errUserGone))
			return
		}

		err = fmt.Errorf("v1.HandleRefresh -> h.uSvc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	access, err := h.issuer.GenerateAccess(user.ID, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleRefresh -> h.issuer.GenerateAccess -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.AccessToken{Access: access})
}
