package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"siteforge/internal/services"
)

// AuthHandler handles central platform authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login validates credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Login successful", result)
}

// RegisterUserRequest is the registration payload.
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=8"`
	TenantID string `json:"tenant_id"`
}

// Register creates a central platform account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}

	var tenantID *uuid.UUID
	if req.TenantID != "" {
		id, err := uuid.Parse(req.TenantID)
		if err != nil {
			ValidationErrorResponse(c, map[string]string{"tenant_id": "must be a valid UUID"})
			return
		}
		tenantID = &id
	}

	result, err := h.authService.Register(c.Request.Context(), req.Email, req.Name, req.Password, "", tenantID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Account created", result)
}

// TenantAuthHandler handles authentication on a dedicated tenant server.
type TenantAuthHandler struct {
	authService *services.TenantAuthService
}

// NewTenantAuthHandler creates the per-tenant auth handler.
func NewTenantAuthHandler(authService *services.TenantAuthService) *TenantAuthHandler {
	return &TenantAuthHandler{
		authService: authService,
	}
}

// Login validates tenant-site credentials.
func (h *TenantAuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Login successful", result)
}

// TenantRegisterRequest is the tenant-site registration payload.
type TenantRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates an account in the tenant's users collection.
func (h *TenantAuthHandler) Register(c *gin.Context) {
	var req TenantRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Account created", result)
}
