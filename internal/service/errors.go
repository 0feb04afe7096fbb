package service

import (
	"errors"
	"fmt"
	"strings"

	"furnistore/storefront/internal/client"
)

var (
	ErrNotLoggedIn        = errors.New("please log in first")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product is no longer available")
)

// MissingFieldsError lists required checkout fields that were left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ActionError wraps a failed backend call with the message to show the shopper.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

const (
	msgLoadProducts  = "Could not load products"
	msgLoadProduct   = "Error loading product"
	msgPlaceOrder    = "Could not place order"
	msgLoadOrders    = "Could not load orders"
	msgSubscribe     = "Subscription failed"
	msgContact       = "Could not send"
	msgCorrectFields = "Please correct highlighted fields"
	msgNetwork       = "Network error – try later"
)

func actionError(err error, fallback string) *ActionError {
	var fetchErr *client.FetchError
	if errors.As(err, &fetchErr) && fetchErr.IsNetwork() {
		return &ActionError{Message: msgNetwork, Err: err}
	}
	return &ActionError{Message: fallback, Err: err}
}
