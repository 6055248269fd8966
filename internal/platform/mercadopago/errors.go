package mercadopago

import (
	"errors"
	"fmt"
)

// ErrProvider is wrapped by every adapter failure.
var ErrProvider = errors.New("payment provider error")

// ProviderError describes a failed provider call. StatusCode is 0 when no
// HTTP response was received (transport error, open breaker).
type ProviderError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("mercadopago %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("mercadopago %s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProvider, e.Err}
	}
	return []error{ErrProvider}
}

// NotFound reports a 404 from the provider.
func (e *ProviderError) NotFound() bool {
	return e != nil && e.StatusCode == 404
}

// clientSide errors are caller mistakes and do not count against the breaker.
func clientSide(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.StatusCode >= 400 && pe.StatusCode < 500 && pe.StatusCode != 429
}
