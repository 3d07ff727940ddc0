package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/config"
	"github.com/skdcommerce/storefront-api/internal/middleware"
	"github.com/skdcommerce/storefront-api/internal/orders"
)

// ErrAlreadyProcessed guarda a reiniciação de pagamento de um pedido já
// liquidado
var ErrAlreadyProcessed = errors.New("order already processed")

// OrderLedger é a superfície do livro de pedidos consumida pela liquidação.
// TransitionPaymentStatus carrega a única guarda de concorrência contra
// liquidação dupla.
type OrderLedger interface {
	GetByOrderID(ctx context.Context, orderID string) (*orders.Order, error)
	TransitionPaymentStatus(ctx context.Context, orderID string, status orders.PaymentStatus) (bool, error)
}

// StockDeductor é a superfície do catálogo consumida na cascata de liquidação
type StockDeductor interface {
	DeductStock(ctx context.Context, productID string, quantity int) error
}

// CRMSink recebe pedidos liquidados para sincronização assíncrona; o enfileiramento
// nunca bloqueia nem falha a resposta do callback
type CRMSink interface {
	Enqueue(order *orders.Order)
}

// EventSink recebe eventos de liquidação, fire-and-forget
type EventSink interface {
	NotifyOrderSettled(ctx context.Context, orderID string, status string)
}

// PaymentUseCase orquestra iniciação de pagamento, interpretação de callback
// e a cascata de liquidação
type PaymentUseCase struct {
	ledger OrderLedger
	stock  StockDeductor
	crm    CRMSink
	events EventSink
	cfg    config.Config
	tracer trace.Tracer
	logger *zap.Logger
}

// NewPaymentUseCase cria uma nova instância de PaymentUseCase
func NewPaymentUseCase(
	ledger OrderLedger,
	stock StockDeductor,
	crm CRMSink,
	events EventSink,
	cfg config.Config,
	tracer trace.Tracer,
	logger *zap.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		ledger: ledger,
		stock:  stock,
		crm:    crm,
		events: events,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}
}

// Init inicia o pagamento de um pedido Pending. Com credenciais do gateway
// configuradas retorna a URL de redirecionamento assinada; sem credenciais
// retorna o bypass de desenvolvimento, que marca o pedido como pago na
// própria visita — um atalho de teste, não uma fronteira de segurança.
func (uc *PaymentUseCase) Init(ctx context.Context, orderID string) (string, error) {
	ctx, span := uc.tracer.Start(ctx, "payment.init")
	defer span.End()
	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := uc.ledger.GetByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.PaymentStatus != orders.PaymentStatusPending {
		return "", fmt.Errorf("order %s: %w", orderID, ErrAlreadyProcessed)
	}

	if !uc.cfg.BillDesk.Configured() {
		confirmation := fmt.Sprintf("%s/order/confirmation?orderId=%s&status=success",
			uc.cfg.FrontendURL, orderID)
		return fmt.Sprintf("%s/payment/success?orderId=%s&redirect=%s",
			uc.cfg.APIBaseURL, orderID, url.QueryEscape(confirmation)), nil
	}

	amount, err := decimal.NewFromString(order.TotalAmount)
	if err != nil {
		return "", fmt.Errorf("invalid total amount %q: %w", order.TotalAmount, err)
	}
	redirect := BuildRedirectURL(uc.cfg.BillDesk, orderID, amount.StringFixed(2))
	uc.logger.Info("➡️ Payment initiated",
		zap.String("order_id", orderID),
		zap.String("amount", order.TotalAmount))
	return redirect, nil
}

// HandleCallback interpreta o callback do gateway e aplica a liquidação.
// Esta fronteira nunca devolve erro: entrada ausente ou inválida degrada para
// um redirect de confirmação marcado como falha.
func (uc *PaymentUseCase) HandleCallback(ctx context.Context, params map[string]string) string {
	ctx, span := uc.tracer.Start(ctx, "payment.callback")
	defer span.End()

	outcome := ParseCallback(params, uc.cfg.BillDesk.SecretKey)
	if outcome.OrderID == "" {
		uc.logger.Warn("⚠️ Payment callback without order id")
		return fmt.Sprintf("%s/order/confirmation?error=missing_order", uc.cfg.FrontendURL)
	}
	span.SetAttributes(
		attribute.String("order_id", outcome.OrderID),
		attribute.Bool("success", outcome.Success),
	)

	status := orders.PaymentStatusFailed
	result := "failed"
	if outcome.Success {
		status = orders.PaymentStatusSuccessful
		result = "success"
	}
	uc.logger.Info("↩️ Payment callback",
		zap.String("order_id", outcome.OrderID),
		zap.String("result", result))

	if err := uc.settle(ctx, outcome.OrderID, status); err != nil {
		// A liquidação é best-effort nesta fronteira: o browser sempre
		// recebe um redirect, nunca um erro cru do gateway.
		uc.logger.Error("❌ Settlement failed",
			zap.String("order_id", outcome.OrderID), zap.Error(err))
	}

	return fmt.Sprintf("%s/order/confirmation?orderId=%s&status=%s",
		uc.cfg.FrontendURL, outcome.OrderID, result)
}

// MarkOrderSuccess aplica a transição de sucesso e sua cascata sem passar
// pela verificação de checksum; é o caminho do bypass de desenvolvimento
func (uc *PaymentUseCase) MarkOrderSuccess(ctx context.Context, orderID string) error {
	ctx, span := uc.tracer.Start(ctx, "payment.mark_success")
	defer span.End()
	span.SetAttributes(attribute.String("order_id", orderID))

	return uc.settle(ctx, orderID, orders.PaymentStatusSuccessful)
}

// settle aplica a transição guardada e, se ela de fato ocorreu e o resultado
// é sucesso, dispara a cascata: dedução de estoque linha a linha e
// sincronização com o CRM, esta última desacoplada da resposta
func (uc *PaymentUseCase) settle(ctx context.Context, orderID string, status orders.PaymentStatus) error {
	transitioned, err := uc.ledger.TransitionPaymentStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to transition payment status: %w", err)
	}
	if !transitioned {
		// Callback duplicado ou pedido desconhecido: no-op silencioso,
		// nenhum efeito downstream dispara de novo.
		uc.logger.Info("ℹ️ Settlement skipped, order not pending",
			zap.String("order_id", orderID))
		return nil
	}

	middleware.PaymentsSettled.WithLabelValues(string(status)).Inc()
	uc.logger.Info("✅ Payment settled",
		zap.String("order_id", orderID),
		zap.String("status", string(status)))

	if status != orders.PaymentStatusSuccessful {
		uc.events.NotifyOrderSettled(ctx, orderID, string(status))
		return nil
	}

	order, err := uc.ledger.GetByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to reload settled order: %w", err)
	}
	for _, item := range order.Items {
		if err := uc.stock.DeductStock(ctx, item.ProductID, item.Quantity); err != nil {
			uc.logger.Error("❌ Stock deduction failed",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
		}
	}

	uc.events.NotifyOrderSettled(ctx, orderID, string(status))
	uc.crm.Enqueue(order)
	return nil
}
