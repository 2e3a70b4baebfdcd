package book

import "errors"

// Caller errors. Every failed operation leaves the book untouched.
var (
	ErrInvalidPrice     = errors.New("book: price must be positive")
	ErrInvalidQuantity  = errors.New("book: quantity must be positive")
	ErrInvalidOrderID   = errors.New("book: order id must be non-zero")
	ErrDuplicateOrderID = errors.New("book: order id already resting")
	ErrUnknownOrderID   = errors.New("book: order id not found")
)
