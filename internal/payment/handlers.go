package payment

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/orders"
)

// InitPaymentRequest representa a requisição de iniciação de pagamento
type InitPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// PaymentHandler contém os handlers HTTP de pagamento
type PaymentHandler struct {
	useCase *PaymentUseCase
	logger  *zap.Logger
}

// NewPaymentHandler cria uma nova instância de PaymentHandler
func NewPaymentHandler(useCase *PaymentUseCase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{useCase: useCase, logger: logger}
}

// RegisterRoutes registra as rotas de pagamento. O gateway pode chamar o
// callback por GET ou POST; ambos respondem sempre com redirect 302.
func (h *PaymentHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/payment/init", h.Init)
	r.GET("/payment/callback", h.Callback)
	r.POST("/payment/callback", h.Callback)
	r.GET("/payment/success", h.DevSuccess)
}

// Init inicia o pagamento e retorna {redirectUrl}
func (h *PaymentHandler) Init(c *gin.Context) {
	var req InitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redirectURL, err := h.useCase.Init(c.Request.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyProcessed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirectUrl": redirectURL})
}

// Callback recebe o retorno do gateway. Parâmetros de query e de formulário
// são mesclados porque o gateway alterna entre GET e POST conforme o fluxo.
func (h *PaymentHandler) Callback(c *gin.Context) {
	params := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	if c.Request.Method == http.MethodPost {
		if err := c.Request.ParseForm(); err == nil {
			for key, values := range c.Request.PostForm {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
		}
	}

	redirectURL := h.useCase.HandleCallback(c.Request.Context(), params)
	c.Redirect(http.StatusFound, redirectURL)
}

// DevSuccess é o bypass de desenvolvimento: marca o pedido como pago e
// encaminha o browser para a página de confirmação
func (h *PaymentHandler) DevSuccess(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID != "" {
		if err := h.useCase.MarkOrderSuccess(c.Request.Context(), orderID); err != nil {
			// O redirect acontece mesmo assim; a falha fica só no log.
			h.logger.Error("❌ Dev success path failed",
				zap.String("order_id", orderID), zap.Error(err))
		}
	}

	redirect := c.Query("redirect")
	if redirect == "" {
		redirect = fmt.Sprintf("%s/order/confirmation?orderId=%s&status=success",
			h.useCase.cfg.FrontendURL, orderID)
	}
	c.Redirect(http.StatusFound, redirect)
}
