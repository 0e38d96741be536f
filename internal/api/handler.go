package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/sizes"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler contains HTTP handlers
type Handler struct {
	cart     *service.CartService
	checkout *service.CheckoutService
	archival *service.ArchivalService
	catalog  *service.CatalogService
	history  *service.HistoryService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cart *service.CartService,
	checkout *service.CheckoutService,
	archival *service.ArchivalService,
	catalog *service.CatalogService,
	history *service.HistoryService,
) *Handler {
	return &Handler{
		cart:     cart,
		checkout: checkout,
		archival: archival,
		catalog:  catalog,
		history:  history,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/sizes/ordered", h.orderSizes)
		v1.GET("/sizes/range/:n", h.sizeRange)

		v1.PUT("/users/:id/cart", h.replaceCart)
		v1.PATCH("/users/:id/cart", h.setCartLine)
		v1.POST("/users/:id/checkout", h.checkoutCart)
		v1.GET("/users/:id/history", h.purchaseHistory)

		admin := v1.Group("/admin")
		{
			admin.POST("/products", h.createProduct)
			admin.PUT("/products/:id", h.updateProduct)
			admin.DELETE("/products/:id", h.deleteProduct)
			admin.PATCH("/products/:id/sizes", h.patchSizes)
			admin.PATCH("/products/:id/categories", h.patchCategories)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts returns the catalog rendered for display
func (h *Handler) listProducts(c *gin.Context) {
	views, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": views})
}

// orderSizes returns the given size labels in display order
func (h *Handler) orderSizes(c *gin.Context) {
	labelsParam := c.Query("labels")
	if labelsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing labels query parameter"})
		return
	}

	labels := strings.Split(labelsParam, ",")
	c.JSON(http.StatusOK, gin.H{"sizes": sizes.Sorted(labels)})
}

// sizeRange returns the 5-wide bucket containing a numeric size
func (h *Handler) sizeRange(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid numeric size"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"range": sizes.Range(n)})
}

type cartLineRequest struct {
	ProductID string      `json:"productId" binding:"required"`
	SizeName  string      `json:"sizeName" binding:"required"`
	Quantity  json.Number `json:"quantity"`
}

type replaceCartRequest struct {
	Cart []struct {
		ProductID string `json:"productId" binding:"required"`
		SizeName  string `json:"sizeName" binding:"required"`
		Quantity  int    `json:"quantity"`
	} `json:"cart"`
}

// replaceCart overwrites the user's whole cart
func (h *Handler) replaceCart(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req replaceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	lines := make([]models.CartItem, 0, len(req.Cart))
	for _, line := range req.Cart {
		productID, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id", "details": line.ProductID})
			return
		}
		lines = append(lines, models.CartItem{
			ProductID: productID,
			SizeName:  line.SizeName,
			Quantity:  line.Quantity,
		})
	}

	if err := h.cart.ReplaceCart(c.Request.Context(), userID, lines); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Success"})
}

// setCartLine upserts a single cart line
func (h *Handler) setCartLine(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity parameter"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if err := h.cart.SetCartLine(c.Request.Context(), userID, productID, req.SizeName, req.Quantity.String()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Success"})
}

// checkoutCart commits the user's cart as a purchase
func (h *Handler) checkoutCart(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.checkout.Checkout(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Success"})
}

// purchaseHistory returns the user's purchase history with product details
func (h *Handler) purchaseHistory(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.history.PurchaseHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// createProduct adds a catalog product
func (h *Handler) createProduct(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	id, err := h.catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "Success", "id": id.Hex()})
}

// updateProduct applies a partial product update
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var update service.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.UpdateProduct(c.Request.Context(), id, update); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"productId": id.Hex()})
}

// deleteProduct removes a product, tombstones it and rewrites history
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	archivedID, err := h.archival.ArchiveAndDelete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removedId": id.Hex(), "archivedId": archivedID.Hex()})
}

type sizePatchRequest struct {
	Operations []service.SizePatchOp `json:"operations" binding:"required"`
}

// patchSizes applies add/edit/delete operations to a product's sizes
func (h *Handler) patchSizes(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req sizePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.PatchSizes(c.Request.Context(), id, req.Operations); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"productId": id.Hex()})
}

type categoryPatchRequest struct {
	Operations []service.CategoryPatchOp `json:"operations" binding:"required"`
}

// patchCategories applies add/delete operations to a product's categories
func (h *Handler) patchCategories(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req categoryPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.PatchCategories(c.Request.Context(), id, req.Operations); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"productId": id.Hex()})
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var insufficient *service.InsufficientInventoryError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":                "Cannot fulfill user order",
			"errorType":            "quantities",
			"unavailablePurchases": insufficient.Unavailable,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidSizeName),
		errors.Is(err, service.ErrInvalidSizeCount),
		errors.Is(err, service.ErrDuplicateSize),
		errors.Is(err, service.ErrSizeNotFound),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrDuplicateCategory),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidOperation),
		errors.Is(err, models.ErrInvalidDiscount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
