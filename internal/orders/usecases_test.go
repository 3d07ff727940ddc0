package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"github.com/skdcommerce/storefront-api/internal/catalog"
)

// MockRepository simula o repositório de pedidos
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, order *Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockRepository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) TransitionPaymentStatus(ctx context.Context, orderID string, status PaymentStatus) (bool, error) {
	args := m.Called(ctx, orderID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SetZohoRecordID(ctx context.Context, orderID, recordID string) error {
	args := m.Called(ctx, orderID, recordID)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, paymentStatus PaymentStatus, fulfilmentStatus string) ([]Order, error) {
	args := m.Called(ctx, paymentStatus, fulfilmentStatus)
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(*DashboardStats), args.Error(1)
}

// MockCatalogStore simula a superfície do catálogo
type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func activeProduct(id, sku, name, price string, stock int) catalog.Product {
	return catalog.Product{
		ID:            id,
		SKU:           sku,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		Status:        catalog.ProductStatusActive,
	}
}

func validRequest(items ...CreateOrderItemRequest) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:    "Asha Nair",
		Mobile:          "9876543210",
		Email:           "asha@example.com",
		ShippingAddress: "12 MG Road",
		City:            "Kochi",
		State:           "Kerala",
		Pincode:         "682001",
		Items:           items,
	}
}

func TestCreateOrder_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCatalog := new(MockCatalogStore)
	uc := NewOrderUseCase(mockRepo, mockCatalog, zaptest.NewLogger(t))
	ctx := context.Background()

	mockCatalog.On("GetByIDs", ctx, []string{"p1", "p2"}).Return([]catalog.Product{
		activeProduct("p1", "SKU-1", "Silk Saree", "2499.00", 5),
		activeProduct("p2", "SKU-2", "Cotton Kurta", "799.50", 10),
	}, nil)

	var created *Order
	mockRepo.On("Create", ctx, mock.AnythingOfType("*orders.Order")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*Order) }).
		Return(nil)

	// Act
	result, err := uc.CreateOrder(ctx, validRequest(
		CreateOrderItemRequest{ProductID: "p1", Quantity: 2},
		CreateOrderItemRequest{ProductID: "p2", Quantity: 1},
	))

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "5797.50", result.TotalAmount)
	assert.Regexp(t, `^SKD-\d+-[0-9a-f]{8}$`, result.OrderID)

	assert.Equal(t, PaymentStatusPending, created.PaymentStatus)
	assert.Len(t, created.Items, 2)
	assert.Equal(t, "Silk Saree", created.Items[0].ProductName)
	assert.Equal(t, "SKU-1", created.Items[0].ProductSKU)
	assert.Equal(t, "2499.00", created.Items[0].PriceAtPurchase)
	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestCreateOrder_EmptyOrder(t *testing.T) {
	uc := NewOrderUseCase(new(MockRepository), new(MockCatalogStore), zaptest.NewLogger(t))

	_, err := uc.CreateOrder(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	uc := NewOrderUseCase(new(MockRepository), new(MockCatalogStore), zaptest.NewLogger(t))

	_, err := uc.CreateOrder(context.Background(), validRequest(
		CreateOrderItemRequest{ProductID: "p1", Quantity: 0},
	))

	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCatalog := new(MockCatalogStore)
	uc := NewOrderUseCase(mockRepo, mockCatalog, zaptest.NewLogger(t))
	ctx := context.Background()

	mockCatalog.On("GetByIDs", ctx, []string{"ghost"}).Return([]catalog.Product{}, nil)

	// Act
	_, err := uc.CreateOrder(ctx, validRequest(
		CreateOrderItemRequest{ProductID: "ghost", Quantity: 1},
	))

	// Assert
	assert.ErrorIs(t, err, ErrInvalidProduct)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCatalog := new(MockCatalogStore)
	uc := NewOrderUseCase(mockRepo, mockCatalog, zaptest.NewLogger(t))
	ctx := context.Background()

	mockCatalog.On("GetByIDs", ctx, []string{"p1"}).Return([]catalog.Product{
		activeProduct("p1", "SKU-1", "Silk Saree", "2499.00", 1),
	}, nil)

	// Act
	_, err := uc.CreateOrder(ctx, validRequest(
		CreateOrderItemRequest{ProductID: "p1", Quantity: 3},
	))

	// Assert
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "requested 3, available 1")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_OutOfStockProduct(t *testing.T) {
	// Arrange
	mockCatalog := new(MockCatalogStore)
	uc := NewOrderUseCase(new(MockRepository), mockCatalog, zaptest.NewLogger(t))
	ctx := context.Background()

	oos := activeProduct("p1", "SKU-1", "Silk Saree", "2499.00", 3)
	oos.Status = catalog.ProductStatusOutOfStock
	mockCatalog.On("GetByIDs", ctx, []string{"p1"}).Return([]catalog.Product{oos}, nil)

	// Act
	_, err := uc.CreateOrder(ctx, validRequest(
		CreateOrderItemRequest{ProductID: "p1", Quantity: 1},
	))

	// Assert
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCreateOrder_DuplicateProductLines(t *testing.T) {
	// O mesmo produto em duas linhas: o lookup é deduplicado, mas cada linha é
	// validada e somada individualmente
	mockRepo := new(MockRepository)
	mockCatalog := new(MockCatalogStore)
	uc := NewOrderUseCase(mockRepo, mockCatalog, zaptest.NewLogger(t))
	ctx := context.Background()

	mockCatalog.On("GetByIDs", ctx, []string{"p1"}).Return([]catalog.Product{
		activeProduct("p1", "SKU-1", "Silk Saree", "100.00", 10),
	}, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*orders.Order")).Return(nil)

	result, err := uc.CreateOrder(ctx, validRequest(
		CreateOrderItemRequest{ProductID: "p1", Quantity: 2},
		CreateOrderItemRequest{ProductID: "p1", Quantity: 3},
	))

	assert.NoError(t, err)
	assert.Equal(t, "500.00", result.TotalAmount)
}

func TestCreateOrder_RepositoryFailure(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	mockCatalog := new(MockCatalogStore)
	uc := NewOrderUseCase(mockRepo, mockCatalog, zaptest.NewLogger(t))
	ctx := context.Background()

	mockCatalog.On("GetByIDs", ctx, []string{"p1"}).Return([]catalog.Product{
		activeProduct("p1", "SKU-1", "Silk Saree", "100.00", 10),
	}, nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	// Act
	_, err := uc.CreateOrder(ctx, validRequest(
		CreateOrderItemRequest{ProductID: "p1", Quantity: 1},
	))

	// Assert
	assert.ErrorContains(t, err, "failed to create order")
}
