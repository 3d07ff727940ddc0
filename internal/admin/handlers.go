package admin

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/catalog"
	"github.com/skdcommerce/storefront-api/internal/config"
	"github.com/skdcommerce/storefront-api/internal/orders"
)

// AdminHandler expõe as rotas do console administrativo
type AdminHandler struct {
	useCase *AdminUseCase
	catalog *catalog.CatalogUseCase
	auth    *AuthHandler
	cfg     config.Admin
	logger  *zap.Logger
}

// NewAdminHandler cria uma nova instância de AdminHandler
func NewAdminHandler(useCase *AdminUseCase, catalogUseCase *catalog.CatalogUseCase, cfg config.Admin, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		useCase: useCase,
		catalog: catalogUseCase,
		auth:    NewAuthHandler(cfg, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterRoutes registra o login público e as rotas protegidas por JWT.
// Devolve o grupo protegido para que outros módulos pendurem rotas
// administrativas nele.
func (h *AdminHandler) RegisterRoutes(r gin.IRouter) gin.IRouter {
	r.POST("/admin/login", h.auth.Login)

	guarded := r.Group("/admin", AuthRequired(h.cfg))
	guarded.GET("/dashboard", h.Dashboard)
	guarded.GET("/orders", h.Orders)
	guarded.GET("/orders/export", h.ExportOrders)
	guarded.POST("/orders/:orderId/sync-zoho", h.SyncOrderToZoho)
	guarded.POST("/products", h.CreateProduct)
	guarded.PUT("/products/:id", h.UpdateProduct)
	guarded.PATCH("/products/:id/stock", h.UpdateProductStock)
	guarded.DELETE("/products/:id", h.DeleteProduct)
	return guarded
}

// Dashboard retorna o resumo do painel
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.useCase.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Error("❌ Failed to build dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Orders lista pedidos, com filtros opcionais via query string
func (h *AdminHandler) Orders(c *gin.Context) {
	list, err := h.useCase.Orders(c.Request.Context(),
		orders.PaymentStatus(c.Query("paymentStatus")), c.Query("fulfilmentStatus"))
	if err != nil {
		h.logger.Error("❌ Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// ExportOrders gera o CSV de pedidos para download
func (h *AdminHandler) ExportOrders(c *gin.Context) {
	data, err := h.useCase.ExportCSV(c.Request.Context(),
		orders.PaymentStatus(c.Query("paymentStatus")), c.Query("fulfilmentStatus"))
	if err != nil {
		h.logger.Error("❌ Failed to export orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export orders"})
		return
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// SyncOrderToZoho dispara uma sincronização manual com o CRM e reporta o
// resultado na resposta
func (h *AdminHandler) SyncOrderToZoho(c *gin.Context) {
	err := h.useCase.SyncOrderToZoho(c.Request.Context(), c.Param("orderId"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "order not found"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
	}
}

// CreateProduct cria um produto novo no catálogo
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var input catalog.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), input)
	switch {
	case errors.Is(err, catalog.ErrDuplicateSKU):
		c.JSON(http.StatusConflict, gin.H{"error": "a product with this SKU already exists"})
	case err != nil:
		h.logger.Error("❌ Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
	default:
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct aplica uma atualização parcial a um produto
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	var input catalog.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), input)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case err != nil:
		h.logger.Error("❌ Failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
	default:
		c.JSON(http.StatusOK, product)
	}
}

// UpdateProductStock ajusta apenas a quantidade em estoque; o status do
// produto é recalculado na mesma escrita
func (h *AdminHandler) UpdateProductStock(c *gin.Context) {
	var body struct {
		StockQuantity *int `json:"stockQuantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *body.StockQuantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stockQuantity must not be negative"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"),
		catalog.UpdateProductInput{StockQuantity: body.StockQuantity})
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case err != nil:
		h.logger.Error("❌ Failed to update stock", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update stock"})
	default:
		c.JSON(http.StatusOK, product)
	}
}

// DeleteProduct remove um produto do catálogo. Itens de pedidos existentes
// preservam seus snapshots de nome, SKU e preço.
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case err != nil:
		h.logger.Error("❌ Failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
