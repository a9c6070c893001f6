package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"siteforge/internal/middleware"
	"siteforge/internal/models"
	"siteforge/internal/services"
)

// TenantHandler handles tenant registry HTTP requests.
type TenantHandler struct {
	tenantService *services.TenantService
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// RegisterTenantRequest is the payload for tenant registration.
type RegisterTenantRequest struct {
	Name         string `json:"name" binding:"required,min=2"`
	Subdomain    string `json:"subdomain" binding:"required,min=3,max=50"`
	GenerateSite bool   `json:"generate_site"`
}

// Register creates a tenant registry entry and optionally its site.
func (h *TenantHandler) Register(c *gin.Context) {
	var req RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}

	result, err := h.tenantService.Register(c.Request.Context(), &services.RegisterTenantRequest{
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		GenerateSite: req.GenerateSite,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Tenant registered successfully", result)
}

// List returns registry entries. Platform admins only.
func (h *TenantHandler) List(c *gin.Context) {
	if middleware.GetUserRole(c) != models.RoleAdmin {
		ErrorResponse(c, http.StatusForbidden, "Access denied", nil)
		return
	}

	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 20)
	tenants, total, err := h.tenantService.List(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Tenants retrieved", gin.H{
		"tenants": tenants,
		"total":   total,
		"page":    page,
	})
}

// Get returns one tenant registry entry.
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tenant retrieved", tenant)
}

// UpdateSettingsRequest carries a partial settings update.
type UpdateSettingsRequest struct {
	Settings map[string]interface{} `json:"settings" binding:"required"`
}

// UpdateSettings merges settings into the tenant record.
func (h *TenantHandler) UpdateSettings(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}

	tenant, err := h.tenantService.UpdateSettings(c.Request.Context(), id, req.Settings)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tenant settings updated", tenant)
}

// UpdateStatusRequest carries a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// UpdateStatus activates or deactivates a tenant.
func (h *TenantHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}

	tenant, err := h.tenantService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tenant status updated", tenant)
}

// Delete removes the registry entry.
func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}

	if err := h.tenantService.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tenant deleted", nil)
}

// GenerateSite materializes or regenerates the tenant's site on disk.
func (h *TenantHandler) GenerateSite(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}

	result, err := h.tenantService.GenerateSite(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Site generated successfully", result)
}

func parseTenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid tenant id", err)
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return defaultValue
}
