package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

// MockRepository simula o repositório de produtos
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, status ProductStatus) ([]Product, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) DeductStock(ctx context.Context, id string, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCache simula o cache de produtos
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProduct(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockCache) SetProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCache) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotifier simula o publicador de eventos de produto
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyProductChanged(ctx context.Context, productID string) {
	m.Called(ctx, productID)
}

func newUseCase(t *testing.T, repo *MockRepository, cache Cache, notifier Notifier) *CatalogUseCase {
	if cache == nil {
		cache = NoopCache{}
	}
	if notifier == nil {
		n := new(MockNotifier)
		n.On("NotifyProductChanged", mock.Anything, mock.Anything).Maybe()
		notifier = n
	}
	return NewCatalogUseCase(repo, cache, notifier, zaptest.NewLogger(t))
}

func TestStatusForQuantity(t *testing.T) {
	if StatusForQuantity(1) != ProductStatusActive {
		t.Error("Expected Active for positive quantity")
	}
	if StatusForQuantity(0) != ProductStatusOutOfStock {
		t.Error("Expected OutOfStock for zero quantity")
	}
	if StatusForQuantity(-1) != ProductStatusOutOfStock {
		t.Error("Expected OutOfStock for negative quantity")
	}
}

func TestGetProduct_CacheHit(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCache := new(MockCache)
	uc := newUseCase(t, mockRepo, mockCache, nil)
	ctx := context.Background()

	cached := NewProduct("SKU-1", "Silk Saree", "2499.00", 5)
	mockCache.On("GetProduct", ctx, cached.ID).Return(cached, nil)

	// Act
	product, err := uc.GetProduct(ctx, cached.ID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, cached, product)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProduct_CacheMissFallsThrough(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCache := new(MockCache)
	uc := newUseCase(t, mockRepo, mockCache, nil)
	ctx := context.Background()

	stored := NewProduct("SKU-1", "Silk Saree", "2499.00", 5)
	mockCache.On("GetProduct", ctx, stored.ID).Return(nil, nil)
	mockRepo.On("GetByID", ctx, stored.ID).Return(stored, nil)
	mockCache.On("SetProduct", ctx, stored).Return(nil)

	// Act
	product, err := uc.GetProduct(ctx, stored.ID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, stored, product)
	mockCache.AssertExpectations(t)
}

func TestGetProduct_CacheFailureDegrades(t *testing.T) {
	// Uma falha no cache nunca falha a leitura; o banco responde
	mockRepo := new(MockRepository)
	mockCache := new(MockCache)
	uc := newUseCase(t, mockRepo, mockCache, nil)
	ctx := context.Background()

	stored := NewProduct("SKU-1", "Silk Saree", "2499.00", 5)
	mockCache.On("GetProduct", ctx, stored.ID).Return(nil, errors.New("redis down"))
	mockRepo.On("GetByID", ctx, stored.ID).Return(stored, nil)
	mockCache.On("SetProduct", ctx, stored).Return(errors.New("redis down"))

	product, err := uc.GetProduct(ctx, stored.ID)

	assert.NoError(t, err)
	assert.Equal(t, stored, product)
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	uc := newUseCase(t, mockRepo, nil, nil)
	ctx := context.Background()

	existing := NewProduct("SKU-1", "Silk Saree", "2499.00", 5)
	mockRepo.On("GetBySKU", ctx, "SKU-1").Return(existing, nil)

	// Act
	_, err := uc.CreateProduct(ctx, CreateProductInput{
		SKU: "SKU-1", Name: "Another Saree", Price: "999.00",
	})

	// Assert
	assert.ErrorIs(t, err, ErrDuplicateSKU)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_StatusDerivedFromStock(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	uc := newUseCase(t, mockRepo, nil, nil)
	ctx := context.Background()

	mockRepo.On("GetBySKU", ctx, "SKU-2").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	// Act
	product, err := uc.CreateProduct(ctx, CreateProductInput{
		SKU: "SKU-2", Name: "Cotton Kurta", Price: "799.50", StockQuantity: 0,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, ProductStatusOutOfStock, product.Status)
}

func TestUpdateProduct_StockChangeRecomputesStatus(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCache := new(MockCache)
	notifier := new(MockNotifier)
	uc := NewCatalogUseCase(mockRepo, mockCache, notifier, zaptest.NewLogger(t))
	ctx := context.Background()

	stored := NewProduct("SKU-1", "Silk Saree", "2499.00", 5)
	mockRepo.On("GetByID", ctx, stored.ID).Return(stored, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
	mockCache.On("DeleteProduct", ctx, stored.ID).Return(nil)
	notifier.On("NotifyProductChanged", ctx, stored.ID).Once()

	zero := 0

	// Act
	product, err := uc.UpdateProduct(ctx, stored.ID, UpdateProductInput{StockQuantity: &zero})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, ProductStatusOutOfStock, product.Status)
	assert.Equal(t, 0, product.StockQuantity)
	mockCache.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDeductStock_MissingProductIsNoop(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	uc := newUseCase(t, mockRepo, nil, nil)
	ctx := context.Background()

	mockRepo.On("DeductStock", ctx, "ghost", 2).Return(false, nil)

	// Act
	err := uc.DeductStock(ctx, "ghost", 2)

	// Assert
	assert.NoError(t, err)
}

func TestDeductStock_InvalidatesCacheAndNotifies(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCache := new(MockCache)
	notifier := new(MockNotifier)
	uc := NewCatalogUseCase(mockRepo, mockCache, notifier, zaptest.NewLogger(t))
	ctx := context.Background()

	mockRepo.On("DeductStock", ctx, "p1", 2).Return(true, nil)
	mockCache.On("DeleteProduct", ctx, "p1").Return(nil)
	notifier.On("NotifyProductChanged", ctx, "p1").Once()

	// Act
	err := uc.DeductStock(ctx, "p1", 2)

	// Assert
	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
	notifier.AssertExpectations(t)
}
