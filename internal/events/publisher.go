package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/config"
)

// Publisher propaga mudanças de produto e liquidações de pedido para o resto
// do sistema (UI ao vivo, consumidores downstream). Todo envio é
// fire-and-forget: falha de publicação nunca falha a liquidação.
type Publisher interface {
	NotifyProductChanged(ctx context.Context, productID string)
	NotifyOrderSettled(ctx context.Context, orderID string, status string)
	Close() error
}

type event struct {
	Event     string `json:"event"`
	ProductID string `json:"productId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	Status    string `json:"status,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
}

// KafkaPublisher implementa Publisher usando um producer síncrono do Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// InitProducer inicializa o producer do Kafka
func InitProducer(cfg config.Kafka) (sarama.SyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer([]string{cfg.Broker}, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

// NewKafkaPublisher cria uma nova instância de KafkaPublisher
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// NotifyProductChanged publica que um produto mudou (estoque, preço, status)
func (p *KafkaPublisher) NotifyProductChanged(ctx context.Context, productID string) {
	p.publish(ctx, event{Event: "product_updated", ProductID: productID})
}

// NotifyOrderSettled publica a liquidação de um pedido
func (p *KafkaPublisher) NotifyOrderSettled(ctx context.Context, orderID string, status string) {
	p.publish(ctx, event{Event: "order_settled", OrderID: orderID, Status: status})
}

// Close encerra o producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, ev event) {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		ev.TraceID = span.SpanContext().TraceID().String()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("❌ Failed to marshal event", zap.Error(err))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.StringEncoder(data),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		p.logger.Warn("⚠️ Event publish failed",
			zap.String("event", ev.Event), zap.Error(err))
		return
	}
	p.logger.Debug("Event published", zap.String("event", ev.Event))
}

// NoopPublisher é usado quando não há broker configurado
type NoopPublisher struct{}

func (NoopPublisher) NotifyProductChanged(ctx context.Context, productID string)        {}
func (NoopPublisher) NotifyOrderSettled(ctx context.Context, orderID string, st string) {}
func (NoopPublisher) Close() error                                                      { return nil }
