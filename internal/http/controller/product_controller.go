package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
	"github.com/iyhunko/catalogo-prodotti/internal/repository"
	"github.com/iyhunko/catalogo-prodotti/internal/service"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest represents the request body for creating a product.
// Availability defaults to true when omitted.
type CreateProductRequest struct {
	Name      string  `json:"nome" binding:"required"`
	Price     float64 `json:"prezzo" binding:"required"`
	Available *bool   `json:"disponibile"`
}

// ListProducts handles the HTTP GET request for the whole catalog.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.productService.ListProducts(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "failed to list products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "failed to get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := model.NewProduct{Name: req.Name, Price: req.Price, Available: true}
	if req.Available != nil {
		product.Available = *req.Available
	}

	created, err := pc.productService.CreateProduct(c.Request.Context(), product)
	if err != nil {
		abortWithError(c, err, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateProduct handles the HTTP PATCH request; only the fields present in the body change.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var patch model.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := pc.productService.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		abortWithError(c, err, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := pc.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		abortWithError(c, err, "failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return 0, false
	}
	return id, true
}

func abortWithError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, model.ErrInvalidProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": model.InvalidProductMessage})
	default:
		slog.Error(message, slog.Any("err", err), slog.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
