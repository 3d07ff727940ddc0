package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrProductNotFound indica que o produto não existe no catálogo
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU indica violação da unicidade de SKU
	ErrDuplicateSKU = errors.New("product with this SKU already exists")
)

// Repository define a interface para operações de banco de dados do catálogo
type Repository interface {
	// GetByIDs busca os produtos existentes entre os ids informados;
	// ids ausentes são silenciosamente omitidos
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)

	// GetByID busca um produto pelo id
	GetByID(ctx context.Context, id string) (*Product, error)

	// GetBySKU busca um produto pelo SKU; retorna nil quando ausente
	GetBySKU(ctx context.Context, sku string) (*Product, error)

	// List lista os produtos ordenados por nome, com filtro opcional de status
	List(ctx context.Context, status ProductStatus) ([]Product, error)

	// Count conta os produtos do catálogo
	Count(ctx context.Context) (int, error)

	// Create cria um novo produto
	Create(ctx context.Context, product *Product) error

	// Update atualiza um produto existente
	Update(ctx context.Context, product *Product) error

	// DeductStock abate quantity do estoque com piso em zero e recalcula o
	// status na mesma instrução; produto ausente é um no-op. Retorna se
	// alguma linha foi alterada.
	DeductStock(ctx context.Context, productID string, quantity int) (bool, error)

	// Delete remove um produto
	Delete(ctx context.Context, id string) error
}

// ProductRepository implementa Repository usando PostgreSQL
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository cria uma nova instância de ProductRepository
func NewProductRepository(db *pgxpool.Pool) Repository {
	return &ProductRepository{db: db}
}

const productColumns = `
	id, sku, name, short_description, description, category, badge,
	is_featured, collection, specifications, image_urls,
	price::text, stock_quantity, status, created_at, updated_at
`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var specs, urls []byte
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.ShortDescription, &p.Description,
		&p.Category, &p.Badge, &p.IsFeatured, &p.Collection, &specs, &urls,
		&p.Price, &p.StockQuantity, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("failed to decode specifications: %w", err)
		}
	}
	p.ImageURLs = []string{}
	if len(urls) > 0 {
		if err := json.Unmarshal(urls, &p.ImageURLs); err != nil {
			return nil, fmt.Errorf("failed to decode image urls: %w", err)
		}
	}
	return &p, nil
}

// GetByIDs busca os produtos existentes entre os ids informados
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// GetByID busca um produto pelo id
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return product, err
}

// GetBySKU busca um produto pelo SKU; retorna nil quando ausente
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE sku = $1
	`, sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return product, err
}

// List lista os produtos ordenados por nome, com filtro opcional de status
func (r *ProductRepository) List(ctx context.Context, status ProductStatus) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// Count conta os produtos do catálogo
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// Create cria um novo produto
func (r *ProductRepository) Create(ctx context.Context, product *Product) error {
	specs, urls, err := encodeJSONColumns(product)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO products (
			id, sku, name, short_description, description, category, badge,
			is_featured, collection, specifications, image_urls,
			price, stock_quantity, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::numeric, $13, $14, $15, $16)
	`, product.ID, product.SKU, product.Name, product.ShortDescription,
		product.Description, product.Category, product.Badge, product.IsFeatured,
		product.Collection, specs, urls, product.Price, product.StockQuantity,
		product.Status, product.CreatedAt, product.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("sku %s: %w", product.SKU, ErrDuplicateSKU)
	}
	return err
}

// Update atualiza um produto existente
func (r *ProductRepository) Update(ctx context.Context, product *Product) error {
	specs, urls, err := encodeJSONColumns(product)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, short_description = $3, description = $4, category = $5,
		    badge = $6, is_featured = $7, collection = $8, specifications = $9,
		    image_urls = $10, price = $11::numeric, stock_quantity = $12,
		    status = $13, updated_at = NOW()
		WHERE id = $1
	`, product.ID, product.Name, product.ShortDescription, product.Description,
		product.Category, product.Badge, product.IsFeatured, product.Collection,
		specs, urls, product.Price, product.StockQuantity, product.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeductStock abate quantity do estoque em uma única instrução atômica:
// piso em zero e status recalculado juntos, sem read-modify-write, para que
// deduções concorrentes sobre o mesmo produto nunca percam escrita.
func (r *ProductRepository) DeductStock(ctx context.Context, productID string, quantity int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock_quantity = GREATEST(stock_quantity - $2, 0),
		    status = CASE WHEN stock_quantity - $2 <= 0 THEN 'OutOfStock' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
	`, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to deduct stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete remove um produto
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func encodeJSONColumns(product *Product) ([]byte, []byte, error) {
	specifications := product.Specifications
	if specifications == nil {
		specifications = map[string]string{}
	}
	specs, err := json.Marshal(specifications)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode specifications: %w", err)
	}
	imageURLs := product.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}
	urls, err := json.Marshal(imageURLs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode image urls: %w", err)
	}
	return specs, urls, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
