package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus representa os possíveis status de pagamento de um pedido.
// Pending é o estado inicial; Successful e Failed são terminais — nenhuma
// transição sai de um estado terminal.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "Pending"
	PaymentStatusSuccessful PaymentStatus = "Successful"
	PaymentStatusFailed     PaymentStatus = "Failed"
)

// Order representa um pedido no sistema. OrderID é o identificador de
// negócio visível externamente, distinto da chave primária.
type Order struct {
	ID               string        `json:"id"`
	OrderID          string        `json:"orderId"`
	CustomerName     string        `json:"customerName"`
	Mobile           string        `json:"mobile"`
	Email            string        `json:"email"`
	ShippingAddress  string        `json:"shippingAddress"`
	City             string        `json:"city"`
	State            string        `json:"state"`
	Pincode          string        `json:"pincode"`
	TotalAmount      string        `json:"totalAmount"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	FulfilmentStatus *string       `json:"fulfilmentStatus"`
	ZohoRecordID     *string       `json:"zohoRecordId"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	Items            []OrderItem   `json:"items"`
}

// OrderItem representa uma linha de um pedido. Os campos PriceAtPurchase,
// ProductName e ProductSKU são snapshots tirados na criação do pedido:
// editar ou remover o produto depois não altera o histórico.
type OrderItem struct {
	ID              string `json:"id"`
	OrderID         string `json:"orderId"`
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"priceAtPurchase"`
	ProductName     string `json:"productName"`
	ProductSKU      string `json:"productSku"`
}

// NewOrderID gera um identificador de negócio no formato
// SKD-<epoch millis>-<8 primeiros hex de um UUID novo>. A probabilidade de
// colisão é tratada como desprezível; a constraint de unicidade do banco é
// o backstop.
func NewOrderID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("SKD-%d-%s", time.Now().UnixMilli(), suffix)
}

// NewOrder cria um novo pedido no estado Pending
func NewOrder(orderID string) *Order {
	now := time.Now()
	return &Order{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         []OrderItem{},
	}
}

// LineExtension calcula preço unitário × quantidade de uma linha em
// aritmética decimal exata — dinheiro nunca passa por ponto flutuante
func LineExtension(unitPrice string, quantity int) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid unit price %q: %w", unitPrice, err)
	}
	return price.Mul(decimal.NewFromInt(int64(quantity))), nil
}

// FormatAmount renderiza um valor monetário com exatamente 2 casas decimais
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
