package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/domain/catalog"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

// CatalogService is the read-only catalog used by CatalogHandler
type CatalogService interface {
	FindMenuByID(ctx context.Context, id uint) (*catalog.Menu, error)
	ListMenus(ctx context.Context, filter catalog.MenuFilter) ([]catalog.Menu, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

// CatalogHandler serves categories and menus
type CatalogHandler struct {
	catalogService CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved successfully", categories)
}

// ListMenus handles GET /menus?categoryId=&search=
func (h *CatalogHandler) ListMenus(c *gin.Context) {
	filter := catalog.MenuFilter{Search: c.Query("search")}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "Invalid category ID")
			return
		}
		filter.CategoryID = uint(id)
	}

	menus, err := h.catalogService.ListMenus(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Menus retrieved successfully", menus)
}

// GetMenu handles GET /menus/:id
func (h *CatalogHandler) GetMenu(c *gin.Context) {
	id, ok := idParam(c, "id", "menu ID")
	if !ok {
		return
	}

	menu, err := h.catalogService.FindMenuByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Menu retrieved successfully", menu)
}
