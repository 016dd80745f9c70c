package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "woodline/internal/core/context"
	"woodline/internal/domain/access"
	"woodline/internal/domain/documents/inventory"
	"woodline/internal/domain/documents/purchase"
	"woodline/internal/domain/documents/transfer"
	"woodline/internal/domain/documents/writeoff"
	"woodline/internal/domain/ledger"
	"woodline/internal/infrastructure/http/v1/dto"
)

// DocumentsHandler handles stock document endpoints: purchases,
// transfers, write-offs and inventory checks.
type DocumentsHandler struct {
	*BaseHandler
	purchases *purchase.Service
	transfers *transfer.Service
	writeoffs *writeoff.Service
	inventsvc *inventory.Service
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(
	base *BaseHandler,
	purchases *purchase.Service,
	transfers *transfer.Service,
	writeoffs *writeoff.Service,
	inventsvc *inventory.Service,
) *DocumentsHandler {
	return &DocumentsHandler{
		BaseHandler: base,
		purchases:   purchases,
		transfers:   transfers,
		writeoffs:   writeoffs,
		inventsvc:   inventsvc,
	}
}

// CreatePurchase handles POST /documents/purchases
func (h *DocumentsHandler) CreatePurchase(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	actor := ledger.Actor{
		UserID: actorID,
		Role:   access.Role(appctx.GetRole(ctx)),
	}

	var input purchase.CreateInput
	if !h.BindJSON(c, &input) {
		return
	}

	doc, err := h.purchases.Create(ctx, actor, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// GetPurchase handles GET /documents/purchases/:id
func (h *DocumentsHandler) GetPurchase(c *gin.Context) {
	ctx := c.Request.Context()

	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// ListPurchases handles GET /documents/purchases
func (h *DocumentsHandler) ListPurchases(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListDocumentsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	items, total, err := h.purchases.List(ctx, req.Limit, req.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}

// CreateTransfer handles POST /documents/transfers
func (h *DocumentsHandler) CreateTransfer(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var input transfer.CreateInput
	if !h.BindJSON(c, &input) {
		return
	}

	doc, err := h.transfers.Create(ctx, actorID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// GetTransfer handles GET /documents/transfers/:id
func (h *DocumentsHandler) GetTransfer(c *gin.Context) {
	ctx := c.Request.Context()

	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.transfers.GetByID(ctx, transferID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// ListTransfers handles GET /documents/transfers
func (h *DocumentsHandler) ListTransfers(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListDocumentsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	items, total, err := h.transfers.List(ctx, req.Limit, req.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}

// CreateWriteOff handles POST /documents/write-offs
func (h *DocumentsHandler) CreateWriteOff(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var input writeoff.CreateInput
	if !h.BindJSON(c, &input) {
		return
	}

	doc, err := h.writeoffs.Create(ctx, actorID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// GetWriteOff handles GET /documents/write-offs/:id
func (h *DocumentsHandler) GetWriteOff(c *gin.Context) {
	ctx := c.Request.Context()

	writeoffID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.writeoffs.GetByID(ctx, writeoffID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// ListWriteOffs handles GET /documents/write-offs
func (h *DocumentsHandler) ListWriteOffs(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListDocumentsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	items, total, err := h.writeoffs.List(ctx, req.Limit, req.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}

// CreateInventory handles POST /documents/inventories
func (h *DocumentsHandler) CreateInventory(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var input inventory.CreateInput
	if !h.BindJSON(c, &input) {
		return
	}

	doc, err := h.inventsvc.Create(ctx, actorID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// ApplyInventory handles POST /documents/inventories/:id/apply
func (h *DocumentsHandler) ApplyInventory(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.inventsvc.Apply(ctx, actorID, checkID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// GetInventory handles GET /documents/inventories/:id
func (h *DocumentsHandler) GetInventory(c *gin.Context) {
	ctx := c.Request.Context()

	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.inventsvc.GetByID(ctx, checkID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// ListInventories handles GET /documents/inventories
func (h *DocumentsHandler) ListInventories(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListDocumentsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	items, total, err := h.inventsvc.List(ctx, req.Limit, req.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}
