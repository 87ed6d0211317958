package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/catalog"
	"github.com/Keoroanthony/go-storefront/internal/models"
)

// POST /admin/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req catalog.CategoryRequest
	if !bind(c, &req) {
		return
	}

	category, err := h.Catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DELETE /admin/categories/:id
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /admin/categories/:id/price-stats
func (h *Handler) CategoryPriceStats(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.Catalog.CategoryPriceStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type activeRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *Handler) setActive(c *gin.Context, model any) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active required"})
		return
	}

	if err := h.Catalog.SetActive(c.Request.Context(), model, id, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": *req.IsActive})
}

// PATCH /admin/categories/:id
func (h *Handler) SetCategoryActive(c *gin.Context) { h.setActive(c, &models.Category{}) }

// PATCH /admin/products/:id
func (h *Handler) SetProductActive(c *gin.Context) { h.setActive(c, &models.Product{}) }

// PATCH /admin/sizes/:id
func (h *Handler) SetSizeActive(c *gin.Context) { h.setActive(c, &models.ProductSize{}) }

// PATCH /admin/reviews/:id
func (h *Handler) SetReviewActive(c *gin.Context) { h.setActive(c, &models.ProductReview{}) }
