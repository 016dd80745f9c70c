package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "woodline/internal/core/context"
	"woodline/internal/core/id"
	"woodline/internal/domain/access"
	"woodline/internal/domain/ledger"
	"woodline/internal/domain/sales"
	"woodline/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles payment and cash register endpoints.
type LedgerHandler struct {
	*BaseHandler
	service  *ledger.Service
	salesSvc *sales.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service, salesSvc *sales.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service, salesSvc: salesSvc}
}

func (h *LedgerHandler) actor(c *gin.Context) (ledger.Actor, bool) {
	actorID, ok := h.ActorID(c)
	if !ok {
		return ledger.Actor{}, false
	}
	return ledger.Actor{
		UserID: actorID,
		Role:   access.Role(appctx.GetRole(c.Request.Context())),
	}, true
}

// CreatePayment handles POST /payments
func (h *LedgerHandler) CreatePayment(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var input ledger.PaymentInput
	if !h.BindJSON(c, &input) {
		return
	}

	payment, err := h.service.ReceivePayment(ctx, actor, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, payment)
}

// ListPayments handles GET /payments
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListPaymentsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := ledger.PaymentFilter{
		FromDate: req.From,
		ToDate:   req.To,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	customerID, ok := h.ParseOptionalID(c, req.CustomerID)
	if !ok {
		return
	}
	filter.CustomerID = customerID
	saleID, ok := h.ParseOptionalID(c, req.SaleID)
	if !ok {
		return
	}
	filter.SaleID = saleID
	if req.Kind != "" {
		kind := ledger.PaymentKind(req.Kind)
		filter.Kind = &kind
	}

	items, total, err := h.service.ListPayments(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}

// SaleOutstanding handles GET /sales/:id/outstanding
func (h *LedgerHandler) SaleOutstanding(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.salesSvc.GetByID(ctx, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	outstanding, err := h.service.SaleOutstanding(ctx, saleID, sale.TotalUZS)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"saleId":         saleID,
		"totalUzs":       sale.TotalUZS,
		"outstandingUzs": outstanding,
	})
}

// Withdraw handles POST /ledger/withdrawals
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if !h.BindJSON(c, &req) {
		return
	}

	refID := id.Nil()
	if req.RefID != "" {
		parsed, ok := h.ParseOptionalID(c, req.RefID)
		if !ok {
			return
		}
		refID = *parsed
	}

	op, err := h.service.Withdraw(ctx, actor, ledger.Register(req.Register), refID, req.AmountUZS, req.AmountUSD)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, op)
}

// GetBalances handles GET /ledger/balances
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	balances, err := h.service.GetBalances(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": balances})
}

// GetBalance handles GET /ledger/balances/:register
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()

	balance, err := h.service.GetBalance(ctx, ledger.Register(c.Param("register")))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, balance)
}

// ListOps handles GET /ledger/ops
func (h *LedgerHandler) ListOps(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListOpsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := ledger.OpFilter{
		FromDate: req.From,
		ToDate:   req.To,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.Register != "" {
		register := ledger.Register(req.Register)
		filter.Register = &register
	}
	if req.Type != "" {
		opType := ledger.OpType(req.Type)
		filter.Type = &opType
	}

	items, total, err := h.service.ListOps(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(items, total, req.Limit, req.Offset))
}
