package catalog

import (
	"context"

	"go.uber.org/zap"
)

// Notifier é o destino das notificações de mudança de produto. O envio é
// fire-and-forget: falhas são logadas e nunca propagadas ao chamador.
type Notifier interface {
	NotifyProductChanged(ctx context.Context, productID string)
}

// CatalogUseCase contém a lógica de negócio do catálogo
type CatalogUseCase struct {
	repository Repository
	cache      Cache
	notifier   Notifier
	logger     *zap.Logger
}

// NewCatalogUseCase cria uma nova instância de CatalogUseCase
func NewCatalogUseCase(repository Repository, cache Cache, notifier Notifier, logger *zap.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		repository: repository,
		cache:      cache,
		notifier:   notifier,
		logger:     logger,
	}
}

// GetByIDs busca os produtos existentes entre os ids informados; ids
// ausentes são omitidos e cabe ao chamador detectar as lacunas
func (uc *CatalogUseCase) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	return uc.repository.GetByIDs(ctx, ids)
}

// GetProduct busca um produto pelo id com cache-aside
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*Product, error) {
	if cached, err := uc.cache.GetProduct(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		uc.logger.Warn("⚠️ product cache read failed", zap.String("product_id", id), zap.Error(err))
	}

	product, err := uc.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetProduct(ctx, product); err != nil {
		uc.logger.Warn("⚠️ product cache write failed", zap.String("product_id", id), zap.Error(err))
	}
	return product, nil
}

// ListProducts lista os produtos com filtro opcional de status
func (uc *CatalogUseCase) ListProducts(ctx context.Context, status ProductStatus) ([]Product, error) {
	return uc.repository.List(ctx, status)
}

// CreateProductInput agrupa os campos aceitos na criação de um produto
type CreateProductInput struct {
	SKU              string            `json:"sku" binding:"required"`
	Name             string            `json:"name" binding:"required"`
	ShortDescription *string           `json:"shortDescription"`
	Description      *string           `json:"description"`
	Category         *string           `json:"category"`
	Badge            *string           `json:"badge"`
	IsFeatured       bool              `json:"isFeatured"`
	Collection       *string           `json:"collection"`
	Specifications   map[string]string `json:"specifications"`
	ImageURLs        []string          `json:"imageUrls"`
	Price            string            `json:"price" binding:"required"`
	StockQuantity    int               `json:"stockQuantity"`
}

// CreateProduct cria um novo produto, rejeitando SKU duplicado
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	existing, err := uc.repository.GetBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateSKU
	}

	product := NewProduct(input.SKU, input.Name, input.Price, input.StockQuantity)
	product.ShortDescription = input.ShortDescription
	product.Description = input.Description
	product.Category = input.Category
	product.Badge = input.Badge
	product.IsFeatured = input.IsFeatured
	product.Collection = input.Collection
	product.Specifications = input.Specifications
	if input.ImageURLs != nil {
		product.ImageURLs = input.ImageURLs
	}

	if err := uc.repository.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.logger.Info("✅ Product created",
		zap.String("product_id", product.ID),
		zap.String("sku", product.SKU))
	return product, nil
}

// UpdateProductInput agrupa os campos aceitos na atualização de um produto;
// ponteiros nulos significam "não alterar"
type UpdateProductInput struct {
	Name             *string            `json:"name"`
	ShortDescription *string            `json:"shortDescription"`
	Description      *string            `json:"description"`
	Category         *string            `json:"category"`
	Badge            *string            `json:"badge"`
	IsFeatured       *bool              `json:"isFeatured"`
	Collection       *string            `json:"collection"`
	Specifications   *map[string]string `json:"specifications"`
	ImageURLs        *[]string          `json:"imageUrls"`
	Price            *string            `json:"price"`
	StockQuantity    *int               `json:"stockQuantity"`
}

// UpdateProduct aplica uma atualização parcial; quando a quantidade em
// estoque muda, o status é recalculado na mesma escrita
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*Product, error) {
	product, err := uc.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.ShortDescription != nil {
		product.ShortDescription = input.ShortDescription
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Badge != nil {
		product.Badge = input.Badge
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.Collection != nil {
		product.Collection = input.Collection
	}
	if input.Specifications != nil {
		product.Specifications = *input.Specifications
	}
	if input.ImageURLs != nil {
		product.ImageURLs = *input.ImageURLs
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
		product.Status = StatusForQuantity(*input.StockQuantity)
	}

	if err := uc.repository.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)
	uc.notifier.NotifyProductChanged(ctx, id)
	return product, nil
}

// DeductStock abate o estoque após a liquidação de um pagamento. Best-effort:
// produto ausente é um no-op e não falha o chamador.
func (uc *CatalogUseCase) DeductStock(ctx context.Context, productID string, quantity int) error {
	changed, err := uc.repository.DeductStock(ctx, productID, quantity)
	if err != nil {
		return err
	}
	if !changed {
		uc.logger.Warn("⚠️ stock deduction skipped, product missing",
			zap.String("product_id", productID))
		return nil
	}
	uc.logger.Info("✅ Stock deducted",
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	uc.invalidate(ctx, productID)
	uc.notifier.NotifyProductChanged(ctx, productID)
	return nil
}

// DeleteProduct remove um produto do catálogo. Pedidos históricos não são
// afetados: os itens de pedido carregam snapshots de nome, SKU e preço.
func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.repository.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	return nil
}

func (uc *CatalogUseCase) invalidate(ctx context.Context, id string) {
	if err := uc.cache.DeleteProduct(ctx, id); err != nil {
		uc.logger.Warn("⚠️ product cache invalidation failed",
			zap.String("product_id", id), zap.Error(err))
	}
}
