package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/catalog"
)

var (
	// ErrEmptyOrder indica um pedido sem itens
	ErrEmptyOrder = errors.New("order must have at least one item")
	// ErrInvalidQuantity indica uma linha com quantidade não positiva
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	// ErrInvalidProduct indica uma linha referenciando produto inexistente
	ErrInvalidProduct = errors.New("product not found")
	// ErrInsufficientStock indica estoque insuficiente para uma linha
	ErrInsufficientStock = errors.New("insufficient stock")
)

// CatalogStore é a superfície do catálogo consumida na criação de pedidos
type CatalogStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error)
}

// CreateOrderItemRequest representa uma linha da requisição de criação
type CreateOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest representa a requisição para criar um pedido
type CreateOrderRequest struct {
	CustomerName    string                   `json:"customerName" binding:"required"`
	Mobile          string                   `json:"mobile" binding:"required"`
	Email           string                   `json:"email" binding:"required,email"`
	ShippingAddress string                   `json:"shippingAddress" binding:"required"`
	City            string                   `json:"city" binding:"required"`
	State           string                   `json:"state" binding:"required"`
	Pincode         string                   `json:"pincode" binding:"required"`
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderResult é o resultado retornado ao cliente
type CreateOrderResult struct {
	OrderID     string `json:"orderId"`
	TotalAmount string `json:"totalAmount"`
}

// OrderUseCase contém a lógica de negócio dos pedidos
type OrderUseCase struct {
	repository Repository
	catalog    CatalogStore
	logger     *zap.Logger
}

// NewOrderUseCase cria uma nova instância de OrderUseCase
func NewOrderUseCase(repository Repository, catalog CatalogStore, logger *zap.Logger) *OrderUseCase {
	return &OrderUseCase{
		repository: repository,
		catalog:    catalog,
		logger:     logger,
	}
}

// CreateOrder valida as linhas contra o snapshot atual do catálogo, calcula o
// total em aritmética decimal e persiste o pedido Pending com os snapshots de
// preço/nome/SKU de cada item.
//
// A checagem de estoque é pontual, não uma reserva: dois pedidos concorrentes
// podem ambos passar pela validação da última unidade. O oversell é aceito e
// resolvido apenas no fulfilment; a dedução na liquidação tem piso em zero.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	seen := map[string]bool{}
	ids := []string{}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrInvalidQuantity)
		}
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	products, err := uc.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	productMap := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	total := decimal.Zero
	items := make([]OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, ok := productMap[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrInvalidProduct)
		}
		if product.Status == catalog.ProductStatusOutOfStock || product.StockQuantity < line.Quantity {
			return nil, fmt.Errorf(
				"insufficient stock for %s (requested %d, available %d): %w",
				product.Name, line.Quantity, product.StockQuantity, ErrInsufficientStock)
		}
		extension, err := LineExtension(product.Price, line.Quantity)
		if err != nil {
			return nil, err
		}
		total = total.Add(extension)
		items = append(items, OrderItem{
			ID:              uuid.New().String(),
			ProductID:       product.ID,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
			ProductName:     product.Name,
			ProductSKU:      product.SKU,
		})
	}

	order := NewOrder(NewOrderID())
	order.CustomerName = req.CustomerName
	order.Mobile = req.Mobile
	order.Email = req.Email
	order.ShippingAddress = req.ShippingAddress
	order.City = req.City
	order.State = req.State
	order.Pincode = req.Pincode
	order.TotalAmount = FormatAmount(total)
	order.Items = items

	if err := uc.repository.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	uc.logger.Info("✅ Order created",
		zap.String("order_id", order.OrderID),
		zap.String("total_amount", order.TotalAmount),
		zap.Int("items", len(items)))

	return &CreateOrderResult{OrderID: order.OrderID, TotalAmount: order.TotalAmount}, nil
}

// GetByOrderID busca um pedido pelo identificador de negócio
func (uc *OrderUseCase) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	return uc.repository.GetByOrderID(ctx, orderID)
}
