package validation

import (
	"strconv"
	"strings"

	"storefront/internal/entity"
)

// BillingForm is the checkout form as submitted.
type BillingForm struct {
	Phone    string `json:"phone_number" form:"phone_number" validate:"required,phone,max=15"`
	FullName string `json:"full_name" form:"full_name" validate:"required,max=100"`
	Address  string `json:"address" form:"address" validate:"required"`
}

func (f BillingForm) Validate() (entity.BillingDetails, error) {
	f.Phone = strings.TrimSpace(f.Phone)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Address = strings.TrimSpace(f.Address)

	billing := entity.BillingDetails{Phone: f.Phone, FullName: f.FullName, Address: f.Address}
	return billing, Struct(f)
}

type RegisterForm struct {
	FullName        string `json:"full_name" form:"full_name" validate:"required,max=100"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Phone           string `json:"phone" form:"phone" validate:"required,phone,max=15"`
	Address         string `json:"address" form:"address" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

// Registration is a RegisterForm that passed validation.
type Registration struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	Password string
}

func (f RegisterForm) Validate() (Registration, error) {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)

	reg := Registration{
		FullName: f.FullName,
		Email:    f.Email,
		Phone:    f.Phone,
		Address:  f.Address,
		Password: f.Password,
	}
	return reg, Struct(f)
}

type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type CallbackForm struct {
	GatewayPaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id" validate:"required"`
	GatewayOrderID   string `json:"razorpay_order_id" form:"razorpay_order_id" validate:"required"`
	Signature        string `json:"razorpay_signature" form:"razorpay_signature" validate:"required"`
	OrderID          string `json:"order_id" query:"order_id" validate:"required,number"`
}

// Callback is a payment callback with every field present.
type Callback struct {
	GatewayPaymentID string
	GatewayOrderID   string
	Signature        string
	OrderID          int
}

func (f CallbackForm) Validate() (Callback, error) {
	f.GatewayPaymentID = strings.TrimSpace(f.GatewayPaymentID)
	f.GatewayOrderID = strings.TrimSpace(f.GatewayOrderID)
	f.Signature = strings.TrimSpace(f.Signature)
	f.OrderID = strings.TrimSpace(f.OrderID)

	cb := Callback{
		GatewayPaymentID: f.GatewayPaymentID,
		GatewayOrderID:   f.GatewayOrderID,
		Signature:        f.Signature,
	}
	if err := Struct(f); err != nil {
		return cb, err
	}

	id, err := strconv.Atoi(f.OrderID)
	if err != nil || id <= 0 {
		return cb, &Errors{Fields: []FieldError{{Field: "order_id", Message: "Enter a valid order id."}}}
	}
	cb.OrderID = id
	return cb, nil
}
