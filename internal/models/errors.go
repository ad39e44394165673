package models

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidPrice       = errors.New("price must be a positive integer")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidPromoCode   = errors.New("invalid promo code")
	ErrIncompleteDelivery = errors.New("delivery info is incomplete")
	ErrForbidden          = errors.New("forbidden")
	ErrOutOfStock         = errors.New("not enough stock")
	ErrNoActiveFlow       = errors.New("no active workflow")
	ErrUnexpectedInput    = errors.New("input not accepted at this step")
)
