package zoho

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"github.com/skdcommerce/storefront-api/internal/orders"
)

// MockCRMClient simula o cliente do CRM
type MockCRMClient struct {
	mock.Mock
	configured bool
}

func (m *MockCRMClient) Configured() bool { return m.configured }

func (m *MockCRMClient) CreateRecord(ctx context.Context, payload map[string]any) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockCRMClient) UpdateRecord(ctx context.Context, recordID string, payload map[string]any) error {
	args := m.Called(ctx, recordID, payload)
	return args.Error(0)
}

func (m *MockCRMClient) SearchByOrderID(ctx context.Context, orderID string) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

// MockRecordLinker simula a persistência do vínculo com o CRM
type MockRecordLinker struct {
	mock.Mock
}

func (m *MockRecordLinker) SetZohoRecordID(ctx context.Context, orderID, recordID string) error {
	args := m.Called(ctx, orderID, recordID)
	return args.Error(0)
}

// newTestWorker cria um worker sem goroutine de consumo e com sleep capturado,
// para exercitar SyncOrder de forma síncrona e sem esperas reais
func newTestWorker(t *testing.T, client CRMClient, ledger RecordLinker) (*Worker, *[]time.Duration) {
	delays := &[]time.Duration{}
	w := &Worker{
		client:  client,
		ledger:  ledger,
		logger:  zaptest.NewLogger(t),
		tasks:   make(chan *orders.Order, queueSize),
		backoff: baseBackoff,
		sleep:   func(d time.Duration) { *delays = append(*delays, d) },
	}
	return w, delays
}

func settledOrder(orderID string) *orders.Order {
	order := orders.NewOrder(orderID)
	order.CustomerName = "Asha Nair"
	order.Mobile = "9876543210"
	order.Email = "asha@example.com"
	order.ShippingAddress = "12 MG Road"
	order.TotalAmount = "2499.00"
	order.PaymentStatus = orders.PaymentStatusSuccessful
	order.Items = []orders.OrderItem{
		{ProductID: "p1", ProductName: "Silk Saree", Quantity: 2},
		{ProductID: "p2", ProductName: "Cotton Kurta", Quantity: 1},
	}
	return order
}

func TestSyncOrder_UnconfiguredIsNoop(t *testing.T) {
	// Arrange
	client := &MockCRMClient{configured: false}
	w, _ := newTestWorker(t, client, new(MockRecordLinker))

	// Act
	w.SyncOrder(context.Background(), settledOrder("o1"))

	// Assert: nenhuma chamada ao CRM
	client.AssertNotCalled(t, "SearchByOrderID", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
}

func TestSyncOrder_CreatesAndLinksNewRecord(t *testing.T) {
	// Arrange
	client := &MockCRMClient{configured: true}
	linker := new(MockRecordLinker)
	w, delays := newTestWorker(t, client, linker)
	order := settledOrder("o1")

	client.On("SearchByOrderID", mock.Anything, "o1").Return("", ErrRecordNotFound).Once()
	client.On("CreateRecord", mock.Anything, mock.Anything).Return("crm-001", nil).Once()
	linker.On("SetZohoRecordID", mock.Anything, "o1", "crm-001").Return(nil).Once()

	// Act
	w.SyncOrder(context.Background(), order)

	// Assert
	assert.Empty(t, *delays)
	assert.NotNil(t, order.ZohoRecordID)
	assert.Equal(t, "crm-001", *order.ZohoRecordID)
	client.AssertExpectations(t)
	linker.AssertExpectations(t)
}

func TestSyncOrder_UpdatesLinkedRecord(t *testing.T) {
	// Arrange
	client := &MockCRMClient{configured: true}
	w, _ := newTestWorker(t, client, new(MockRecordLinker))
	order := settledOrder("o1")
	recordID := "crm-001"
	order.ZohoRecordID = &recordID

	client.On("UpdateRecord", mock.Anything, "crm-001", mock.Anything).Return(nil).Once()

	// Act
	w.SyncOrder(context.Background(), order)

	// Assert: com vínculo, sem busca nem criação
	client.AssertNotCalled(t, "SearchByOrderID", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestSyncOrder_SelfHealsMissingLink(t *testing.T) {
	// Pedido sem vínculo local mas com registro já existente no CRM: o worker
	// encontra pelo Order_ID, atualiza e religa
	client := &MockCRMClient{configured: true}
	linker := new(MockRecordLinker)
	w, _ := newTestWorker(t, client, linker)
	order := settledOrder("o1")

	client.On("SearchByOrderID", mock.Anything, "o1").Return("crm-007", nil).Once()
	client.On("UpdateRecord", mock.Anything, "crm-007", mock.Anything).Return(nil).Once()
	linker.On("SetZohoRecordID", mock.Anything, "o1", "crm-007").Return(nil).Once()

	// Act
	w.SyncOrder(context.Background(), order)

	// Assert
	assert.Equal(t, "crm-007", *order.ZohoRecordID)
	client.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
	linker.AssertExpectations(t)
}

func TestSyncOrder_RetriesWithLinearBackoff(t *testing.T) {
	// Arrange: duas falhas, sucesso na terceira tentativa
	client := &MockCRMClient{configured: true}
	linker := new(MockRecordLinker)
	w, delays := newTestWorker(t, client, linker)
	order := settledOrder("o1")

	client.On("SearchByOrderID", mock.Anything, "o1").Return("", assert.AnError).Twice()
	client.On("SearchByOrderID", mock.Anything, "o1").Return("", ErrRecordNotFound).Once()
	client.On("CreateRecord", mock.Anything, mock.Anything).Return("crm-001", nil).Once()
	linker.On("SetZohoRecordID", mock.Anything, "o1", "crm-001").Return(nil).Once()

	// Act
	w.SyncOrder(context.Background(), order)

	// Assert: backoff linear, 1s depois 2s
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *delays)
	client.AssertExpectations(t)
}

func TestSyncOrder_GivesUpAfterThreeAttempts(t *testing.T) {
	// Arrange
	client := &MockCRMClient{configured: true}
	w, delays := newTestWorker(t, client, new(MockRecordLinker))

	client.On("SearchByOrderID", mock.Anything, "o1").Return("", assert.AnError).Times(3)

	// Act: desiste em silêncio, sem erro propagado
	w.SyncOrder(context.Background(), settledOrder("o1"))

	// Assert: exatamente 3 tentativas, 2 esperas
	client.AssertNumberOfCalls(t, "SearchByOrderID", 3)
	assert.Len(t, *delays, 2)
}

func TestSyncNow_ReturnsError(t *testing.T) {
	// O disparo manual devolve a falha ao chamador em vez de tentar de novo
	client := &MockCRMClient{configured: true}
	w, delays := newTestWorker(t, client, new(MockRecordLinker))

	client.On("SearchByOrderID", mock.Anything, "o1").Return("", assert.AnError).Once()

	err := w.SyncNow(context.Background(), settledOrder("o1"))

	assert.Error(t, err)
	assert.Empty(t, *delays)
	client.AssertNumberOfCalls(t, "SearchByOrderID", 1)
}

func TestSyncNow_Unconfigured(t *testing.T) {
	client := &MockCRMClient{configured: false}
	w, _ := newTestWorker(t, client, new(MockRecordLinker))

	err := w.SyncNow(context.Background(), settledOrder("o1"))

	assert.ErrorContains(t, err, "not configured")
}

func TestEnqueue_DropsWhenQueueFull(t *testing.T) {
	// Worker sem consumidor e fila cheia: Enqueue não bloqueia
	client := &MockCRMClient{configured: true}
	w, _ := newTestWorker(t, client, new(MockRecordLinker))

	for i := 0; i < queueSize+10; i++ {
		w.Enqueue(settledOrder("o1"))
	}

	assert.Len(t, w.tasks, queueSize)
}

func TestBuildPayload(t *testing.T) {
	// Arrange
	order := settledOrder("o1")
	order.CreatedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	// Act
	payload := buildPayload(order)

	// Assert
	assert.Equal(t, "Asha Nair", payload["Customer_Name"])
	assert.Equal(t, "Silk Saree, Cotton Kurta", payload["Products_Purchased"])
	assert.Equal(t, 3, payload["Quantity"])
	assert.Equal(t, "o1", payload["Order_ID"])
	assert.Equal(t, "2499.00", payload["Amount_Paid"])
	assert.Equal(t, "Successful", payload["Payment_Status"])
	assert.Equal(t, "2026-03-14T09:30:00Z", payload["Order_Date_Time"])
}
