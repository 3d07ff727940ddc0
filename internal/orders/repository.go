package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrOrderNotFound indica que o pedido não existe
var ErrOrderNotFound = errors.New("order not found")

// DashboardStats agrega os números exibidos no painel administrativo
type DashboardStats struct {
	Pending      int     `json:"pending"`
	Successful   int     `json:"successful"`
	Failed       int     `json:"failed"`
	TotalRevenue string  `json:"totalRevenue"`
	RecentOrders []Order `json:"recentOrders"`
}

// Repository define a interface para operações de banco de dados de pedidos
type Repository interface {
	// Create persiste o pedido e todos os seus itens em uma única transação;
	// nenhum item parcial sobrevive a uma falha
	Create(ctx context.Context, order *Order) error

	// GetByOrderID busca um pedido (com itens) pelo identificador de negócio
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)

	// TransitionPaymentStatus é o único mutador de payment_status. A guarda
	// "status atual = Pending" é aplicada no próprio UPDATE condicional, de
	// forma atômica; retorna se a transição de fato ocorreu. Pedido ausente
	// ou já liquidado é um no-op.
	TransitionPaymentStatus(ctx context.Context, orderID string, status PaymentStatus) (bool, error)

	// SetZohoRecordID persiste a referência do registro criado no CRM
	SetZohoRecordID(ctx context.Context, orderID, recordID string) error

	// List lista pedidos (com itens), mais recentes primeiro, com filtros
	// opcionais de status de pagamento e de fulfilment
	List(ctx context.Context, paymentStatus PaymentStatus, fulfilmentStatus string) ([]Order, error)

	// DashboardStats calcula contagens por status, receita total dos pedidos
	// liquidados e os 10 pedidos mais recentes
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// OrderRepository implementa Repository usando PostgreSQL
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository cria uma nova instância de OrderRepository
func NewOrderRepository(db *pgxpool.Pool) Repository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	id, order_id, customer_name, mobile, email, shipping_address, city, state,
	pincode, total_amount::text, payment_status, fulfilment_status,
	zoho_record_id, created_at, updated_at
`

// Create persiste o pedido e seus itens atomicamente
func (r *OrderRepository) Create(ctx context.Context, order *Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, order_id, customer_name, mobile, email, shipping_address,
			city, state, pincode, total_amount, payment_status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11, $12, $13)
	`, order.ID, order.OrderID, order.CustomerName, order.Mobile, order.Email,
		order.ShippingAddress, order.City, order.State, order.Pincode,
		order.TotalAmount, order.PaymentStatus, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, quantity, price_at_purchase,
				product_name, product_sku
			)
			VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		`, item.ID, order.ID, item.ProductID, item.Quantity,
			item.PriceAtPurchase, item.ProductName, item.ProductSKU)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByOrderID busca um pedido pelo identificador de negócio
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	err := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE order_id = $1
	`, orderID).Scan(
		&order.ID, &order.OrderID, &order.CustomerName, &order.Mobile,
		&order.Email, &order.ShippingAddress, &order.City, &order.State,
		&order.Pincode, &order.TotalAmount, &order.PaymentStatus,
		&order.FulfilmentStatus, &order.ZohoRecordID,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// TransitionPaymentStatus aplica a transição com a guarda de idempotência no
// próprio UPDATE: callbacks duplicados do gateway disputando o mesmo pedido
// resultam em exatamente uma transição
func (r *OrderRepository) TransitionPaymentStatus(ctx context.Context, orderID string, status PaymentStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = $2, updated_at = NOW()
		WHERE order_id = $1 AND payment_status = 'Pending'
	`, orderID, status)
	if err != nil {
		return false, fmt.Errorf("failed to transition payment status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetZohoRecordID persiste a referência do registro do CRM
func (r *OrderRepository) SetZohoRecordID(ctx context.Context, orderID, recordID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET zoho_record_id = $2, updated_at = NOW()
		WHERE order_id = $1
	`, orderID, recordID)
	return err
}

// List lista pedidos com filtros opcionais, mais recentes primeiro
func (r *OrderRepository) List(ctx context.Context, paymentStatus PaymentStatus, fulfilmentStatus string) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	where := ""
	if paymentStatus != "" {
		args = append(args, paymentStatus)
		where = fmt.Sprintf(" WHERE payment_status = $%d", len(args))
	}
	if fulfilmentStatus != "" {
		args = append(args, fulfilmentStatus)
		if where == "" {
			where = fmt.Sprintf(" WHERE fulfilment_status = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND fulfilment_status = $%d", len(args))
		}
	}
	query += where + ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var order Order
		err := rows.Scan(
			&order.ID, &order.OrderID, &order.CustomerName, &order.Mobile,
			&order.Email, &order.ShippingAddress, &order.City, &order.State,
			&order.Pincode, &order.TotalAmount, &order.PaymentStatus,
			&order.FulfilmentStatus, &order.ZohoRecordID,
			&order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// DashboardStats calcula os agregados do painel administrativo
func (r *OrderRepository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE payment_status = 'Pending'),
			COUNT(*) FILTER (WHERE payment_status = 'Successful'),
			COUNT(*) FILTER (WHERE payment_status = 'Failed'),
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'Successful'), 0)::text
		FROM orders
	`).Scan(&stats.Pending, &stats.Successful, &stats.Failed, &stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders ORDER BY created_at DESC LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.RecentOrders = []Order{}
	for rows.Next() {
		var order Order
		err := rows.Scan(
			&order.ID, &order.OrderID, &order.CustomerName, &order.Mobile,
			&order.Email, &order.ShippingAddress, &order.City, &order.State,
			&order.Pincode, &order.TotalAmount, &order.PaymentStatus,
			&order.FulfilmentStatus, &order.ZohoRecordID,
			&order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stats.RecentOrders = append(stats.RecentOrders, order)
	}
	return &stats, rows.Err()
}

func (r *OrderRepository) loadItems(ctx context.Context, orderPK string) ([]OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_purchase::text,
		       product_name, product_sku
		FROM order_items WHERE order_id = $1
	`, orderPK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.PriceAtPurchase, &item.ProductName, &item.ProductSKU)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
