package storefront

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrServiceClosed   = errors.New("storefront service closed")
)
