package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/orders"
)

// ProductCounter expõe a contagem de produtos para o painel
type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

// CRMSyncer dispara uma sincronização síncrona de um pedido com o CRM
type CRMSyncer interface {
	SyncNow(ctx context.Context, order *orders.Order) error
}

// Dashboard agrega os números do painel administrativo
type Dashboard struct {
	TotalProducts int            `json:"totalProducts"`
	Pending       int            `json:"pendingOrders"`
	Successful    int            `json:"successfulOrders"`
	Failed        int            `json:"failedOrders"`
	TotalRevenue  string         `json:"totalRevenue"`
	RecentOrders  []orders.Order `json:"recentOrders"`
}

// AdminUseCase implementa as operações do console administrativo
type AdminUseCase struct {
	orders   orders.Repository
	products ProductCounter
	syncer   CRMSyncer
	logger   *zap.Logger
}

// NewAdminUseCase cria uma nova instância de AdminUseCase
func NewAdminUseCase(orderRepo orders.Repository, products ProductCounter, syncer CRMSyncer, logger *zap.Logger) *AdminUseCase {
	return &AdminUseCase{orders: orderRepo, products: products, syncer: syncer, logger: logger}
}

// Dashboard monta o resumo do painel: contagem de produtos, contagens de
// pedidos por status, receita liquidada e os pedidos mais recentes
func (u *AdminUseCase) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := u.orders.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading order stats: %w", err)
	}

	productCount, err := u.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	return &Dashboard{
		TotalProducts: productCount,
		Pending:       stats.Pending,
		Successful:    stats.Successful,
		Failed:        stats.Failed,
		TotalRevenue:  stats.TotalRevenue,
		RecentOrders:  stats.RecentOrders,
	}, nil
}

// Orders lista pedidos com filtros opcionais de status
func (u *AdminUseCase) Orders(ctx context.Context, paymentStatus orders.PaymentStatus, fulfilmentStatus string) ([]orders.Order, error) {
	return u.orders.List(ctx, paymentStatus, fulfilmentStatus)
}

// SyncOrderToZoho dispara uma sincronização síncrona do pedido com o CRM e
// devolve o resultado para a resposta HTTP
func (u *AdminUseCase) SyncOrderToZoho(ctx context.Context, orderID string) error {
	order, err := u.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := u.syncer.SyncNow(ctx, order); err != nil {
		u.logger.Error("❌ Manual Zoho sync failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return err
	}

	u.logger.Info("✅ Manual Zoho sync success", zap.String("order_id", orderID))
	return nil
}

// ExportCSV serializa todos os pedidos (com filtros opcionais) em CSV para
// download no console. Os itens de cada pedido viram uma única coluna no
// formato "Nome xQtd; Nome xQtd".
func (u *AdminUseCase) ExportCSV(ctx context.Context, paymentStatus orders.PaymentStatus, fulfilmentStatus string) ([]byte, error) {
	list, err := u.orders.List(ctx, paymentStatus, fulfilmentStatus)
	if err != nil {
		return nil, fmt.Errorf("listing orders for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Order ID", "Customer Name", "Mobile", "Email", "Shipping Address",
		"City", "State", "Pincode", "Items", "Total Amount",
		"Payment Status", "Fulfilment Status", "Created At",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, order := range list {
		fulfilment := ""
		if order.FulfilmentStatus != nil {
			fulfilment = *order.FulfilmentStatus
		}
		record := []string{
			order.OrderID,
			order.CustomerName,
			order.Mobile,
			order.Email,
			order.ShippingAddress,
			order.City,
			order.State,
			order.Pincode,
			itemsColumn(order.Items),
			order.TotalAmount,
			string(order.PaymentStatus),
			fulfilment,
			order.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func itemsColumn(items []orders.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
	}
	return strings.Join(parts, "; ")
}
