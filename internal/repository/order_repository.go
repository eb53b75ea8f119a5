package repository

import (
	"context"
	"strings"

	"storefront/internal/entity"
)

const orderColumns = `id, user_id, billing_id, order_date, total_price, total_quantity, status`

// OrderRepository stores order headers and their line snapshots. Once
// written, only the status column is ever updated.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// CreateOrder inserts the header and all lines. Callers wrap it in a
// transaction so a failed line insert leaves no header behind.
func (r *OrderRepository) CreateOrder(ctx context.Context, q DBTX, order *entity.Order) (*entity.Order, error) {
	orderQuery := `INSERT INTO orders (user_id, billing_id, order_date, total_price, total_quantity, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, orderQuery, order.UserID, order.BillingID, order.OrderDate, order.TotalPrice, order.TotalQuantity, order.Status)
	if err != nil {
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	order.ID = int(orderID)

	if len(order.Lines) == 0 {
		return order, nil
	}

	// Insert order lines with batch
	lineQuery := `INSERT INTO order_lines (order_id, product_id, quantity, price) VALUES `
	placeholders := make([]string, 0, len(order.Lines))
	var values []interface{}
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		line := order.Lines[i]
		placeholders = append(placeholders, "(?, ?, ?, ?)")
		values = append(values, order.ID, line.ProductID, line.Quantity, line.Price)
	}
	lineQuery += strings.Join(placeholders, ", ")

	_, err = q.ExecContext(ctx, lineQuery, values...)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrderByID loads an order and its lines. A userID of zero skips the
// ownership filter; the payment callback uses that since the gateway, not
// the user, is calling.
func (r *OrderRepository) GetOrderByID(ctx context.Context, q DBTX, userID, id int) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	args := []interface{}{id}
	if userID != 0 {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}

	order := &entity.Order{}
	err := q.QueryRowContext(ctx, query, args...).Scan(&order.ID, &order.UserID, &order.BillingID, &order.OrderDate, &order.TotalPrice, &order.TotalQuantity, &order.Status)
	if err != nil {
		return nil, err
	}

	lines, err := r.linesFor(ctx, q, []int{order.ID})
	if err != nil {
		return nil, err
	}
	order.Lines = lines[order.ID]

	return order, nil
}

// ListOrdersByUser returns the user's orders, newest first.
func (r *OrderRepository) ListOrdersByUser(ctx context.Context, q DBTX, userID int) ([]entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY order_date DESC, id DESC`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []entity.Order{}
	var ids []int
	for rows.Next() {
		var order entity.Order
		err := rows.Scan(&order.ID, &order.UserID, &order.BillingID, &order.OrderDate, &order.TotalPrice, &order.TotalQuantity, &order.Status)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := r.linesFor(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}

	return orders, nil
}

// UpdateOrderStatus moves a Pending order to status. It reports false when
// the order was no longer Pending, leaving the row untouched.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, q DBTX, id int, status string) (bool, error) {
	query := `UPDATE orders SET status = ? WHERE id = ? AND status = ?`
	res, err := q.ExecContext(ctx, query, status, id, entity.OrderStatusPending)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *OrderRepository) CreatePaymentIntent(ctx context.Context, q DBTX, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	query := `INSERT INTO payment_intents (order_id, gateway_order_id, amount, currency, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query, intent.OrderID, intent.GatewayOrderID, intent.Amount, intent.Currency, intent.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	intent.ID = int(id)
	return intent, nil
}

// ListPaymentIntents returns every gateway order created for an order.
func (r *OrderRepository) ListPaymentIntents(ctx context.Context, q DBTX, orderID int) ([]entity.PaymentIntent, error) {
	query := `SELECT id, order_id, gateway_order_id, amount, currency, created_at FROM payment_intents WHERE order_id = ? ORDER BY id`
	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []entity.PaymentIntent
	for rows.Next() {
		var intent entity.PaymentIntent
		if err := rows.Scan(&intent.ID, &intent.OrderID, &intent.GatewayOrderID, &intent.Amount, &intent.Currency, &intent.CreatedAt); err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, rows.Err()
}

func (r *OrderRepository) linesFor(ctx context.Context, q DBTX, orderIDs []int) (map[int][]entity.OrderLine, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(orderIDs)), ", ")
	query := `SELECT id, order_id, product_id, quantity, price FROM order_lines WHERE order_id IN (` + placeholders + `) ORDER BY id`

	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[int][]entity.OrderLine, len(orderIDs))
	for rows.Next() {
		var line entity.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.Price); err != nil {
			return nil, err
		}
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}
	return lines, rows.Err()
}

