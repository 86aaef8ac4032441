package shop

import "errors"

var (
	// ErrLoginRequired is returned before any request when an action needs a session
	ErrLoginRequired = errors.New("please log in to continue")
	// ErrOutOfStock is returned before any request for a variant with no stock
	ErrOutOfStock = errors.New("this variant is out of stock")
	// ErrInvalidQuantity rejects quantities below one
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrMissingID rejects calls with an empty identifier
	ErrMissingID = errors.New("an id is required")
	// ErrBusy is returned when the same button is clicked while its request is in flight
	ErrBusy = errors.New("request already in progress")
)
