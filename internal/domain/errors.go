package domain

import "errors"

var (
	ErrOutOfStock       = errors.New("requested quantity exceeds stock")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrItemNotInCart    = errors.New("item not found in cart")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyPaid      = errors.New("order is already paid")
	ErrAlreadyDelivered = errors.New("order is already delivered")
	ErrActionNotAllowed = errors.New("action not allowed for order status")

	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrPaymentAmountMismatch = errors.New("payment amount does not match order total")

	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrReviewNotAllowed = errors.New("product has no pending review")
)
