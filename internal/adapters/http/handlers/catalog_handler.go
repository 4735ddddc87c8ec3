package handlers

import (
	"strconv"

	"lendinghub/internal/adapters/http/middleware"
	"lendinghub/internal/core/services"
	"lendinghub/internal/pkg/pagination"
	"lendinghub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles category, item and inventory endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ============================================================
// Category
// ============================================================

// ListCategories lists all categories
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.ListCategories(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Categories retrieved successfully", categories)
}

// CreateCategory creates a new category
// @Summary Create category
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CategoryInput true "Category"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var input services.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	category, err := h.catalogService.CreateCategory(c.Context(), &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Category created successfully", category)
}

// UpdateCategory updates a category
// @Summary Update category
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param body body services.CategoryInput true "Category"
// @Success 200 {object} response.Response
// @Router /categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var input services.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	category, err := h.catalogService.UpdateCategory(c.Context(), uint(id), &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Category updated successfully", category)
}

// ============================================================
// Item
// ============================================================

// ListItems lists items
// @Summary List items
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param category_id query int false "Filter by category"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /items [get]
func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	categoryID, _ := strconv.ParseUint(c.Query("category_id", "0"), 10, 32)

	items, total, err := h.catalogService.ListItems(c.Context(), uint(categoryID), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, "Items retrieved successfully", items, pagination.GetMeta(params, total))
}

// GetItem gets an item by ID
// @Summary Get item
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /items/{id} [get]
func (h *CatalogHandler) GetItem(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	item, err := h.catalogService.GetItem(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Item retrieved successfully", item)
}

// CreateItem adds an item to the catalog
// @Summary Create item
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateItemInput true "Item"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /items [post]
func (h *CatalogHandler) CreateItem(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	var input services.CreateItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.catalogService.CreateItem(c.Context(), identity.UserID, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Item created successfully", item)
}

// UpdateItem edits an item's descriptive fields
// @Summary Update item
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body services.UpdateItemInput true "Fields to change"
// @Success 200 {object} response.Response
// @Router /items/{id} [put]
func (h *CatalogHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var input services.UpdateItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.catalogService.UpdateItem(c.Context(), uint(id), &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Item updated successfully", item)
}

// ============================================================
// Inventory
// ============================================================

// MaintenanceRequest toggles maintenance
type MaintenanceRequest struct {
	On bool `json:"on"`
}

// AddCopiesRequest adds copies to an item
type AddCopiesRequest struct {
	Count int `json:"count"`
}

// SetMaintenance takes an item out of or back into circulation
// @Summary Set maintenance
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body MaintenanceRequest true "Maintenance flag"
// @Success 200 {object} response.Response
// @Router /items/{id}/maintenance [put]
func (h *CatalogHandler) SetMaintenance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req MaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.catalogService.SetMaintenance(c.Context(), uint(id), req.On)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Maintenance updated", item)
}

// AddCopies adds copies to an item
// @Summary Add copies
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body AddCopiesRequest true "Number of copies"
// @Success 200 {object} response.Response
// @Router /items/{id}/copies [post]
func (h *CatalogHandler) AddCopies(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req AddCopiesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.catalogService.AddCopies(c.Context(), uint(id), req.Count)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Copies added", item)
}

// WriteOffCopy removes one lost copy from the inventory
// @Summary Write off a copy
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /items/{id}/write-off [post]
func (h *CatalogHandler) WriteOffCopy(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	item, err := h.catalogService.WriteOffCopy(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Copy written off", item)
}
