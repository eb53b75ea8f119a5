package repository

import (
	"context"

	"storefront/internal/entity"
)

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) GetProductByID(ctx context.Context, q DBTX, id int) (*entity.Product, error) {
	product := &entity.Product{}

	query := `SELECT id, name, price, description, image FROM products WHERE id = ?`
	err := q.QueryRowContext(ctx, query, id).Scan(&product.ID, &product.Name, &product.Price, &product.Description, &product.Image)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *ProductRepository) GetProducts(ctx context.Context, q DBTX) ([]entity.Product, error) {
	products := []entity.Product{}

	query := `SELECT id, name, price, description, image FROM products ORDER BY id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var product entity.Product
		err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Description, &product.Image)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}
