package orders

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skdcommerce/storefront-api/internal/middleware"
)

// OrderHandler contém os handlers HTTP de pedidos
type OrderHandler struct {
	useCase *OrderUseCase
}

// NewOrderHandler cria uma nova instância de OrderHandler
func NewOrderHandler(useCase *OrderUseCase) *OrderHandler {
	return &OrderHandler{useCase: useCase}
}

// RegisterRoutes registra as rotas públicas de pedidos
func (h *OrderHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:orderId", h.GetOrder)
}

// CreateOrder cria um pedido Pending e retorna {orderId, totalAmount}
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.useCase.CreateOrder(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyOrder),
			errors.Is(err, ErrInvalidQuantity),
			errors.Is(err, ErrInvalidProduct),
			errors.Is(err, ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	middleware.OrdersCreated.Inc()
	c.JSON(http.StatusCreated, result)
}

// GetOrder busca um pedido completo (com itens) pelo identificador de negócio
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.useCase.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}
