package repository

import (
	"context"

	"storefront/internal/entity"
)

type BillingRepository struct{}

func NewBillingRepository() *BillingRepository {
	return &BillingRepository{}
}

func (r *BillingRepository) CreateBilling(ctx context.Context, q DBTX, billing *entity.BillingDetails) (*entity.BillingDetails, error) {
	query := `INSERT INTO billing_details (user_id, phone_number, full_name, address) VALUES (?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query, billing.UserID, billing.Phone, billing.FullName, billing.Address)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	billing.ID = int(id)
	return billing, nil
}

func (r *BillingRepository) GetBillingByID(ctx context.Context, q DBTX, id int) (*entity.BillingDetails, error) {
	query := `SELECT id, user_id, phone_number, full_name, address FROM billing_details WHERE id = ?`

	billing := &entity.BillingDetails{}
	var userID *int
	err := q.QueryRowContext(ctx, query, id).Scan(&billing.ID, &userID, &billing.Phone, &billing.FullName, &billing.Address)
	if err != nil {
		return nil, err
	}
	billing.UserID = userID
	return billing, nil
}
