package repository

import (
	"context"

	"storefront/internal/entity"
)

const cartLineColumns = `c.id, c.user_id, c.product_id, c.quantity, p.id, p.name, p.price, p.description, p.image`

// CartRepository stores cart lines. Every query is scoped by user id, so a
// line belonging to somebody else behaves exactly like a missing one.
type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// AddOne inserts the (user, product) line with quantity 1 or bumps the
// existing line by one. A product that no longer exists is ErrNoRows.
func (r *CartRepository) AddOne(ctx context.Context, q DBTX, userID, productID int) error {
	query := `INSERT INTO cart_lines (user_id, product_id, quantity) VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE quantity = quantity + 1`
	_, err := q.ExecContext(ctx, query, userID, productID)
	if isMissingParent(err) {
		return ErrNoRows
	}
	return err
}

func (r *CartRepository) GetLine(ctx context.Context, q DBTX, userID, lineID int) (*entity.CartLine, error) {
	query := `SELECT ` + cartLineColumns + ` FROM cart_lines c JOIN products p ON p.id = c.product_id
		WHERE c.id = ? AND c.user_id = ?`

	line := &entity.CartLine{}
	err := q.QueryRowContext(ctx, query, lineID, userID).Scan(
		&line.ID, &line.UserID, &line.ProductID, &line.Quantity,
		&line.Product.ID, &line.Product.Name, &line.Product.Price, &line.Product.Description, &line.Product.Image)
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, q DBTX, userID, lineID, quantity int) error {
	query := `UPDATE cart_lines SET quantity = ? WHERE id = ? AND user_id = ?`
	_, err := q.ExecContext(ctx, query, quantity, lineID, userID)
	return err
}

// DeleteLine removes one line and returns ErrNoRows if the user owns no such line.
func (r *CartRepository) DeleteLine(ctx context.Context, q DBTX, userID, lineID int) error {
	query := `DELETE FROM cart_lines WHERE id = ? AND user_id = ?`
	res, err := q.ExecContext(ctx, query, lineID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, q DBTX, userID int) error {
	_, err := q.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID)
	return err
}

// ListLines returns the user's lines joined with the current product data.
// With forUpdate the rows stay locked until the surrounding transaction ends.
func (r *CartRepository) ListLines(ctx context.Context, q DBTX, userID int, forUpdate bool) ([]entity.CartLine, error) {
	query := `SELECT ` + cartLineColumns + ` FROM cart_lines c JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ? ORDER BY c.id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []entity.CartLine
	for rows.Next() {
		var line entity.CartLine
		err := rows.Scan(
			&line.ID, &line.UserID, &line.ProductID, &line.Quantity,
			&line.Product.ID, &line.Product.Name, &line.Product.Price, &line.Product.Description, &line.Product.Image)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}
