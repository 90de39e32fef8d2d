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
	"github.com/vietanh2810/inventory-api/internal/service"
)

type ItemService interface {
	List(ctx context.Context, principal domain.User, filter domain.ItemFilter) ([]domain.InventoryItem, error)
	Create(ctx context.Context, principal domain.User, item domain.InventoryItem) (domain.InventoryItem, error)
	Get(ctx context.Context, principal domain.User, id uint) (domain.InventoryItem, error)
	UpdateItem(ctx context.Context, principal domain.User, id uint, patch domain.ItemPatch) (domain.InventoryItem, error)
	Delete(ctx context.Context, principal domain.User, id uint) error
}

type QueryService interface {
	ListQuantities(ctx context.Context, principal domain.User) ([]domain.ItemQuantity, error)
	GetQuantity(ctx context.Context, principal domain.User, id uint) (domain.ItemQuantity, error)
	ChangeHistory(ctx context.Context, principal domain.User, itemID uint) ([]domain.ChangeLog, error)
}

type ItemHandler struct {
	svc  ItemService
	qSvc QueryService
	uSvc UserService
}

func NewItemHandler(svc ItemService, qSvc QueryService, uSvc UserService) *ItemHandler {
	return &ItemHandler{
		svc:  svc,
		qSvc: qSvc,
		uSvc: uSvc,
	}
}

func renderItemErr(ctx *gin.Context, op string, id uint, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.RenderErr(ctx, response.ErrNotFound("item", "id", id))
	case errors.Is(err, service.ErrConcurrentUpdate):
		response.RenderErr(ctx, response.ErrConflict(service.ErrConcurrentUpdate))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.%s -> %w", op, err)))
	}
}

// HandleListItems godoc
// @Summary      List the caller's inventory items
// @Tags         items
// @Produce      json
// @Param        category   query     string  false  "exact category"
// @Param        price      query     string  false  "exact price"
// @Param        min_price  query     string  false  "price >= min_price"
// @Param        max_price  query     string  false  "price <= max_price"
// @Param        low_stock  query     int     false  "quantity < low_stock"
// @Param        search     query     string  false  "terms matched against name and description"
// @Param        ordering   query     string  false  "comma separated: name, quantity, price, date_added; prefix - for descending"
// @Success      200        {array}   response.Item
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /items/ [get]
// @Security BearerAuth
func (h *ItemHandler) HandleListItems(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var query request.ListItemsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	items, err := h.svc.List(ctx.Request.Context(), user, filter)
	if err != nil {
		renderItemErr(ctx, "HandleListItems -> h.svc.List", 0, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewItems(items))
}

// HandleCreateItem godoc
// @Summary      Create an inventory item
// @Description  The caller becomes the owner. The initial quantity is not written to the change log.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        request  body      request.ItemRequest true "request body"
// @Success      201      {object}  response.Item
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /items/ [post]
// @Security BearerAuth
func (h *ItemHandler) HandleCreateItem(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(false); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Create(ctx.Request.Context(), user, req.ToDomain())
	if err != nil {
		renderItemErr(ctx, "HandleCreateItem -> h.svc.Create", 0, err)
		return
	}

	ctx.JSON(http.StatusCreated, response.NewItem(created))
}

// HandleGetItem godoc
// @Summary      Get one of the caller's items
// @Tags         items
// @Produce      json
// @Param        itemID   path      int  true  "Item ID"
// @Success      200      {object}  response.Item
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /items/{itemID}/ [get]
// @Security BearerAuth
func (h *ItemHandler) HandleGetItem(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "itemID", "item")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	item, err := h.svc.Get(ctx.Request.Context(), user, id)
	if err != nil {
		renderItemErr(ctx, "HandleGetItem -> h.svc.Get", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewItem(item))
}

// HandleUpdateItem godoc
// @Summary      Update one of the caller's items
// @Description  PUT requires every field, PATCH writes only the fields given. A quantity change is recorded in the change log in the same transaction.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        itemID   path      int  true  "Item ID"
// @Param        request  body      request.ItemRequest true "request body"
// @Success      200      {object}  response.Item
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /items/{itemID}/ [put]
// @Router       /items/{itemID}/ [patch]
// @Security BearerAuth
func (h *ItemHandler) HandleUpdateItem(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "itemID", "item")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(ctx.Request.Method == http.MethodPatch); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateItem(ctx.Request.Context(), user, id, req.ToPatch())
	if err != nil {
		renderItemErr(ctx, "HandleUpdateItem -> h.svc.UpdateItem", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewItem(updated))
}

// HandleDeleteItem godoc
// @Summary      Delete one of the caller's items
// @Tags         items
// @Param        itemID   path      int  true  "Item ID"
// @Success      204
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /items/{itemID}/ [delete]
// @Security BearerAuth
func (h *ItemHandler) HandleDeleteItem(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "itemID", "item")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), user, id); err != nil {
		renderItemErr(ctx, "HandleDeleteItem -> h.svc.Delete", id, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListQuantities godoc
// @Summary      Stock levels of the caller's items
// @Tags         items
// @Produce      json
// @Success      200      {array}   domain.ItemQuantity
// @Failure      401      {object}  response.Err
// @Router       /items/quantity/ [get]
// @Security BearerAuth
func (h *ItemHandler) HandleListQuantities(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	rows, err := h.qSvc.ListQuantities(ctx.Request.Context(), user)
	if err != nil {
		renderItemErr(ctx, "HandleListQuantities -> h.qSvc.ListQuantities", 0, err)
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

// HandleGetQuantity godoc
// @Summary      Stock level of one item
// @Tags         items
// @Produce      json
// @Param        itemID   path      int  true  "Item ID"
// @Success      200      {object}  domain.ItemQuantity
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /items/{itemID}/quantity/ [get]
// @Security BearerAuth
func (h *ItemHandler) HandleGetQuantity(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "itemID", "item")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	row, err := h.qSvc.GetQuantity(ctx.Request.Context(), user, id)
	if err != nil {
		renderItemErr(ctx, "HandleGetQuantity -> h.qSvc.GetQuantity", id, err)
		return
	}

	ctx.JSON(http.StatusOK, row)
}

// HandleListChanges godoc
// @Summary      Change history of one item
// @Description  Newest first.
// @Tags         items
// @Produce      json
// @Param        itemID   path      int  true  "Item ID"
// @Success      200      {array}   response.ChangeLog
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /items/{itemID}/changes/ [get]
// @Security BearerAuth
func (h *ItemHandler) HandleListChanges(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := pathID(ctx, "itemID", "item")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entries, err := h.qSvc.ChangeHistory(ctx.Request.Context(), user, id)
	if err != nil {
		renderItemErr(ctx, "HandleListChanges -> h.qSvc.ChangeHistory", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewChangeLogs(entries))
}
