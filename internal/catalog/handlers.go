package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogHandler contém os handlers HTTP públicos do catálogo
type CatalogHandler struct {
	useCase *CatalogUseCase
}

// NewCatalogHandler cria uma nova instância de CatalogHandler
func NewCatalogHandler(useCase *CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{useCase: useCase}
}

// RegisterRoutes registra as rotas públicas do catálogo
func (h *CatalogHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
}

// ListProducts lista os produtos da vitrine
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	status := ProductStatus(c.Query("status"))
	products, err := h.useCase.ListProducts(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct busca um produto pelo id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.useCase.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}
