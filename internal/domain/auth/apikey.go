package auth

import "context"

// APIKeyInfo holds the identity data for a validated API key.
type APIKeyInfo struct {
	ID         string
	KeyHash    string
	CustomerID int64
	Name       string
}

// APIKeyRepository provides lookup of active API keys by their HMAC hash.
type APIKeyRepository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
