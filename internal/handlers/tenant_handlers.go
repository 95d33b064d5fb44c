package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/common"
	"rentledger/internal/repositories"
	"rentledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const statsCacheTTL = 5 * time.Minute

// TenantHandlers handles tenant registry HTTP requests.
type TenantHandlers struct {
	tenantService services.TenantService
	cache         caching.CacheService
}

func NewTenantHandlers(tenantService services.TenantService, cache caching.CacheService) *TenantHandlers {
	return &TenantHandlers{
		tenantService: tenantService,
		cache:         cache,
	}
}

func ownerFromContext(c echo.Context) (uuid.UUID, error) {
	ownerID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, common.NewAuthError("User not authenticated")
	}
	return ownerID, nil
}

func pathID(c echo.Context, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, common.NewValidationError(field, "Invalid id format")
	}
	return id, nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// invalidateStats drops the cached dashboard numbers after a write.
// Failures only cost staleness so they are logged, not surfaced.
func (h *TenantHandlers) invalidateStats(c echo.Context, ownerID uuid.UUID) {
	if err := h.cache.InvalidateOwnerCache(c.Request().Context(), ownerID); err != nil {
		log.Printf("WARN: failed to invalidate stats cache for owner %s: %v", ownerID, err)
	}
}

func (h *TenantHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	tenant, err := h.tenantService.Create(ctx, ownerID, &req)
	if err != nil {
		return common.SendError(c, err)
	}

	h.invalidateStats(c, ownerID)
	return common.SendSuccess(c, http.StatusCreated, "Tenant created", tenant)
}

func (h *TenantHandlers) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	tenant, err := h.tenantService.GetByID(ctx, ownerID, tenantID)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Tenant fetched", tenant)
}

func (h *TenantHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var patch services.UpdateTenantPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	tenant, err := h.tenantService.Update(ctx, ownerID, tenantID, &patch)
	if err != nil {
		return common.SendError(c, err)
	}

	h.invalidateStats(c, ownerID)
	return common.SendSuccess(c, http.StatusOK, "Tenant updated", tenant)
}

func (h *TenantHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.tenantService.Delete(ctx, ownerID, tenantID); err != nil {
		return common.SendError(c, err)
	}

	h.invalidateStats(c, ownerID)
	return common.SendSuccess(c, http.StatusOK, "Tenant deleted", nil)
}

func (h *TenantHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}

	filter := repositories.TenantFilter{
		Status:     c.QueryParam("status"),
		SearchText: c.QueryParam("search"),
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 100)

	tenants, total, err := h.tenantService.List(ctx, ownerID, filter, page, limit)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Tenants fetched", echo.Map{
		"tenants": tenants,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *TenantHandlers) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}

	if cached, err := h.cache.GetTenantStats(ctx, ownerID); err == nil && cached != nil {
		return common.SendSuccess(c, http.StatusOK, "Tenant statistics fetched", cached)
	}

	stats, err := h.tenantService.Stats(ctx, ownerID)
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.cache.SetTenantStats(ctx, ownerID, stats, statsCacheTTL); err != nil {
		log.Printf("WARN: failed to cache tenant stats for owner %s: %v", ownerID, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Tenant statistics fetched", stats)
}
