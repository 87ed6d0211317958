package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/catalog"
)

// GET /categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GET /products and /categories/:slug/products
func (h *Handler) ListProducts(c *gin.Context) {
	list, err := h.Catalog.ListProducts(c.Request.Context(), c.Param("slug"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /products/:slug
func (h *Handler) ProductDetail(c *gin.Context) {
	detail, err := h.Catalog.ProductDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// POST /products/:slug/reviews
func (h *Handler) CreateReview(c *gin.Context) {
	var form catalog.ReviewForm
	if !bind(c, &form) {
		return
	}

	customer, _ := auth.SessionCustomer(c)
	review, err := h.Catalog.CreateReview(c.Request.Context(), c.Param("slug"), customer, form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// POST /admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req catalog.ProductRequest
	if !bind(c, &req) {
		return
	}

	product, err := h.Catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// POST /admin/products/:id/images
func (h *Handler) UploadProductImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	rel, err := h.Media.SaveImage(fh, "products")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.Catalog.AttachImage(c.Request.Context(), id, rel)
	if errors.Is(err, catalog.ErrGalleryFull) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "url": h.Media.PublicURL(rel)})
}

// POST /admin/products/:id/sizes
func (h *Handler) AddSize(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req catalog.SizeRequest
	if !bind(c, &req) {
		return
	}

	size, err := h.Catalog.AddSize(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, size)
}
