package service

import (
	"context"

	"github.com/segmentio/kafka-go"

	"storefront/internal/entity"
	"storefront/internal/payment"
	"storefront/internal/repository"
)

// The interfaces below are implemented by the repository package; services
// take them so tests can swap in in-memory fakes.

type ProductStore interface {
	GetProductByID(ctx context.Context, q repository.DBTX, id int) (*entity.Product, error)
	GetProducts(ctx context.Context, q repository.DBTX) ([]entity.Product, error)
}

type CartStore interface {
	AddOne(ctx context.Context, q repository.DBTX, userID, productID int) error
	GetLine(ctx context.Context, q repository.DBTX, userID, lineID int) (*entity.CartLine, error)
	UpdateQuantity(ctx context.Context, q repository.DBTX, userID, lineID, quantity int) error
	DeleteLine(ctx context.Context, q repository.DBTX, userID, lineID int) error
	Clear(ctx context.Context, q repository.DBTX, userID int) error
	ListLines(ctx context.Context, q repository.DBTX, userID int, forUpdate bool) ([]entity.CartLine, error)
}

type BillingStore interface {
	CreateBilling(ctx context.Context, q repository.DBTX, billing *entity.BillingDetails) (*entity.BillingDetails, error)
	GetBillingByID(ctx context.Context, q repository.DBTX, id int) (*entity.BillingDetails, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, q repository.DBTX, order *entity.Order) (*entity.Order, error)
	GetOrderByID(ctx context.Context, q repository.DBTX, userID, id int) (*entity.Order, error)
	ListOrdersByUser(ctx context.Context, q repository.DBTX, userID int) ([]entity.Order, error)
	UpdateOrderStatus(ctx context.Context, q repository.DBTX, id int, status string) (bool, error)
	CreatePaymentIntent(ctx context.Context, q repository.DBTX, intent *entity.PaymentIntent) (*entity.PaymentIntent, error)
	ListPaymentIntents(ctx context.Context, q repository.DBTX, orderID int) ([]entity.PaymentIntent, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, q repository.DBTX, user *entity.User) (*entity.User, error)
	GetUserByUsername(ctx context.Context, q repository.DBTX, username string) (*entity.User, error)
	CreateProfile(ctx context.Context, q repository.DBTX, profile *entity.UserProfile) (*entity.UserProfile, error)
	GetProfileByUserID(ctx context.Context, q repository.DBTX, userID int) (*entity.UserProfile, error)
}

// Gateway is the payment gateway as seen by the storefront.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*payment.Intent, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	KeyID() string
}

// EventWriter is satisfied by *kafka.Writer.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}
