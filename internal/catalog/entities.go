package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus representa os possíveis status de um produto
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "Active"
	ProductStatusOutOfStock ProductStatus = "OutOfStock"
)

// Product representa um produto do catálogo. O campo Status é um cache
// desnormalizado da quantidade em estoque: OutOfStock sse StockQuantity <= 0
// na última escrita, mantido na mesma transação que a quantidade.
type Product struct {
	ID               string            `json:"id"`
	SKU              string            `json:"sku"`
	Name             string            `json:"name"`
	ShortDescription *string           `json:"shortDescription"`
	Description      *string           `json:"description"`
	Category         *string           `json:"category"`
	Badge            *string           `json:"badge"`
	IsFeatured       bool              `json:"isFeatured"`
	Collection       *string           `json:"collection"`
	Specifications   map[string]string `json:"specifications"`
	ImageURLs        []string          `json:"imageUrls"`
	Price            string            `json:"price"`
	StockQuantity    int               `json:"stockQuantity"`
	Status           ProductStatus     `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// NewProduct cria uma nova instância de Product com o status derivado do estoque
func NewProduct(sku, name, price string, stockQuantity int) *Product {
	now := time.Now()
	return &Product{
		ID:            uuid.New().String(),
		SKU:           sku,
		Name:          name,
		ImageURLs:     []string{},
		Price:         price,
		StockQuantity: stockQuantity,
		Status:        StatusForQuantity(stockQuantity),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// StatusForQuantity deriva o status a partir da quantidade em estoque
func StatusForQuantity(quantity int) ProductStatus {
	if quantity > 0 {
		return ProductStatusActive
	}
	return ProductStatusOutOfStock
}
