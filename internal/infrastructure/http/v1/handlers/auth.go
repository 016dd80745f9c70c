package handlers

import (
	"github.com/gin-gonic/gin"

	"woodline/internal/core/apperror"
	appctx "woodline/internal/core/context"
	"woodline/internal/domain/access"
	"woodline/internal/domain/auth"
	"woodline/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication and employee account endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{Token: token, User: user})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	userCtx := appctx.GetUser(ctx)
	if userCtx == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	userID, ok := h.ActorID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}

// Permissions handles GET /auth/permissions: the full vocabulary plus
// per-role defaults, for the account management UI.
func (h *AuthHandler) Permissions(c *gin.Context) {
	defaults := map[string][]access.Permission{}
	for _, role := range access.Roles() {
		defaults[string(role)] = access.DefaultsFor(role)
	}

	h.OK(c, gin.H{
		"permissions":  access.All(),
		"groups":       access.Groups(),
		"roleDefaults": defaults,
	})
}

// CreateUser handles POST /users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req auth.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, user)
}

// UpdateUser handles PUT /users/:id
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req auth.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUser(ctx, userID, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}

// DeactivateUser handles POST /users/:id/deactivate
func (h *AuthHandler) DeactivateUser(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateUser(ctx, userID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "user deactivated")
}

// GetUser handles GET /users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}

// ListUsers handles GET /users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var pager dto.PaginationRequest
	if !h.BindQuery(c, &pager) {
		return
	}
	pager.Defaults()

	filter := auth.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Limit:  pager.Limit,
		Offset: pager.Offset,
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	users, total, err := h.service.ListUsers(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(users, total, pager.Limit, pager.Offset))
}
