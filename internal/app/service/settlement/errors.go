package settlement

import (
	"errors"
	"fmt"

	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	// ErrSelfPurchase is a Forbidden: sellers cannot buy their own documents.
	ErrSelfPurchase = fmt.Errorf("cannot buy own item: %w", ErrForbidden)
	// ErrProvider is wrapped by every payment provider failure.
	ErrProvider          = mercadopago.ErrProvider
	ErrMalformedCallback = errors.New("malformed callback")
)
