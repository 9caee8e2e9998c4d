package shop

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyCart rejects checkout with nothing in the cart.
var ErrEmptyCart = errors.New("shop: cart is empty")

// ErrInvalidCredentials is returned for any failed admin login. It is
// deliberately generic: callers cannot tell which of the two fields was
// wrong.
var ErrInvalidCredentials = errors.New("shop: invalid credentials")

// ValidationError reports field-level validation failures. It is raised
// before any remote call, so a validation failure never leaves a partial
// order or a half-applied mutation behind.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "shop: validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "shop: validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
