package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrGateway            = errors.New("payment gateway error")
	ErrDuplicateRequest   = errors.New("request already processed")
	ErrOrderNotPending    = errors.New("order is no longer pending")
)
