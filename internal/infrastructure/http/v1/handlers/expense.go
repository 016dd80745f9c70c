package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "woodline/internal/core/context"
	"woodline/internal/domain/access"
	"woodline/internal/domain/expense"
	"woodline/internal/domain/ledger"
	"woodline/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler handles expense entry and category endpoints.
type ExpenseHandler struct {
	*BaseHandler
	service *expense.Service
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// Create handles POST /expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	actor := ledger.Actor{
		UserID: actorID,
		Role:   access.Role(appctx.GetRole(ctx)),
	}

	var input expense.CreateInput
	if !h.BindJSON(c, &input) {
		return
	}

	entry, err := h.service.Create(ctx, actor, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entry)
}

// List handles GET /expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListExpensesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := expense.EntryFilter{
		FromDate: req.From,
		ToDate:   req.To,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	categoryID, ok := h.ParseOptionalID(c, req.CategoryID)
	if !ok {
		return
	}
	filter.CategoryID = categoryID

	items, total, err := h.service.ListEntries(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}

// CreateCategory handles POST /expenses/categories
func (h *ExpenseHandler) CreateCategory(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateExpenseCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	category, err := h.service.CreateCategory(ctx, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, category)
}

// DeleteCategory handles DELETE /expenses/categories/:id
func (h *ExpenseHandler) DeleteCategory(c *gin.Context) {
	ctx := c.Request.Context()

	categoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(ctx, categoryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ListCategories handles GET /expenses/categories
func (h *ExpenseHandler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.ListCategories(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}
