package zoho

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/orders"
)

const (
	maxRetries   = 2
	queueSize    = 64
	baseBackoff  = time.Second
	syncDeadline = time.Minute
)

// RecordLinker persiste no livro de pedidos a referência do registro criado
// no CRM
type RecordLinker interface {
	SetZohoRecordID(ctx context.Context, orderID, recordID string) error
}

// CRMClient é a superfície do Zoho consumida pelo worker
type CRMClient interface {
	Configured() bool
	CreateRecord(ctx context.Context, payload map[string]any) (string, error)
	UpdateRecord(ctx context.Context, recordID string, payload map[string]any) error
	SearchByOrderID(ctx context.Context, orderID string) (string, error)
}

// Worker sincroniza pedidos liquidados com o CRM de forma assíncrona e
// best-effort. A fila é explícita: a liquidação enfileira e segue em frente;
// nenhuma falha do CRM jamais alcança o caminho de resposta do checkout.
type Worker struct {
	client CRMClient
	ledger RecordLinker
	logger *zap.Logger

	tasks   chan *orders.Order
	wg      sync.WaitGroup
	backoff time.Duration
	sleep   func(time.Duration)
}

// NewWorker cria o worker e inicia a goroutine de consumo da fila
func NewWorker(client CRMClient, ledger RecordLinker, logger *zap.Logger) *Worker {
	w := &Worker{
		client:  client,
		ledger:  ledger,
		logger:  logger,
		tasks:   make(chan *orders.Order, queueSize),
		backoff: baseBackoff,
		sleep:   time.Sleep,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue entrega um pedido liquidado para sincronização. Nunca bloqueia o
// chamador: com a fila cheia o pedido é descartado com log — a liquidação no
// livro de pedidos já está consolidada e não depende do CRM.
func (w *Worker) Enqueue(order *orders.Order) {
	select {
	case w.tasks <- order:
	default:
		w.logger.Warn("⚠️ CRM sync queue full, dropping order",
			zap.String("order_id", order.OrderID))
	}
}

// Close drena a fila e aguarda o worker terminar
func (w *Worker) Close() {
	close(w.tasks)
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for order := range w.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), syncDeadline)
		w.SyncOrder(ctx, order)
		cancel()
	}
}

// SyncOrder empurra um pedido para o CRM com até 2 retries (3 tentativas no
// total) e backoff linear. Esgotadas as tentativas, loga e desiste em
// silêncio: o pedido permanece liquidado no livro independente do CRM.
func (w *Worker) SyncOrder(ctx context.Context, order *orders.Order) {
	if !w.client.Configured() {
		w.logger.Warn("⚠️ Zoho credentials not configured; skipping CRM sync",
			zap.String("order_id", order.OrderID))
		return
	}

	payload := buildPayload(order)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := w.syncOnce(ctx, order, payload)
		if err == nil {
			w.logger.Info("✅ Zoho sync success", zap.String("order_id", order.OrderID))
			return
		}
		w.logger.Error("❌ Zoho sync failed",
			zap.String("order_id", order.OrderID),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries+1),
			zap.Error(err))
		if attempt == maxRetries {
			w.logger.Error("❌ Zoho sync gave up", zap.String("order_id", order.OrderID))
			return
		}
		w.sleep(time.Duration(attempt+1) * w.backoff)
	}
}

// SyncNow executa uma única tentativa de sincronização e devolve o erro ao
// chamador. Usado pelo disparo manual do console administrativo, que
// reporta o resultado na resposta em vez de tentar de novo.
func (w *Worker) SyncNow(ctx context.Context, order *orders.Order) error {
	if !w.client.Configured() {
		return errors.New("zoho credentials not configured")
	}
	return w.syncOnce(ctx, order, buildPayload(order))
}

// syncOnce executa uma tentativa de reconciliação: atualiza o registro já
// vinculado; sem vínculo, busca pelo Order_ID e religa (vínculo
// auto-curativo); sem registro, cria um novo e persiste a referência
func (w *Worker) syncOnce(ctx context.Context, order *orders.Order, payload map[string]any) error {
	if order.ZohoRecordID != nil && *order.ZohoRecordID != "" {
		return w.client.UpdateRecord(ctx, *order.ZohoRecordID, payload)
	}

	recordID, err := w.client.SearchByOrderID(ctx, order.OrderID)
	switch {
	case err == nil:
		if err := w.client.UpdateRecord(ctx, recordID, payload); err != nil {
			return err
		}
	case errors.Is(err, ErrRecordNotFound):
		recordID, err = w.client.CreateRecord(ctx, payload)
		if err != nil {
			return err
		}
	default:
		return err
	}

	if err := w.ledger.SetZohoRecordID(ctx, order.OrderID, recordID); err != nil {
		return err
	}
	order.ZohoRecordID = &recordID
	return nil
}

// buildPayload projeta o pedido no formato plano de campos do CRM
func buildPayload(order *orders.Order) map[string]any {
	names := make([]string, 0, len(order.Items))
	quantity := 0
	for _, item := range order.Items {
		names = append(names, item.ProductName)
		quantity += item.Quantity
	}

	return map[string]any{
		"Customer_Name":      order.CustomerName,
		"Mobile_Number":      order.Mobile,
		"Email_ID":           order.Email,
		"Shipping_Address":   order.ShippingAddress,
		"Products_Purchased": strings.Join(names, ", "),
		"Quantity":           quantity,
		"Order_ID":           order.OrderID,
		"Amount_Paid":        order.TotalAmount,
		"Payment_Status":     string(order.PaymentStatus),
		"Order_Date_Time":    order.CreatedAt.UTC().Format(time.RFC3339),
	}
}
