package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/customer"
)

// APIKeyHeader is the request header carrying the caller's API key.
const APIKeyHeader = "api_key"

// SecurityHandler authenticates API requests via HMAC-SHA256 hashed API keys
// and resolves them to a customer identity.
type SecurityHandler struct {
	apikeys   auth.APIKeyRepository
	customers customer.Repository
	pepper    []byte
}

// NewSecurityHandler creates a SecurityHandler with the given API key
// repository, customer repository, and HMAC pepper.
func NewSecurityHandler(apikeys auth.APIKeyRepository, customers customer.Repository, pepper []byte) *SecurityHandler {
	return &SecurityHandler{
		apikeys:   apikeys,
		customers: customers,
		pepper:    pepper,
	}
}

// Authenticate resolves the API key header, when present, into an
// auth.Identity stored in the request context. Requests without a key pass
// through unauthenticated; RequireAuth decides whether that is acceptable.
func (s *SecurityHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		ident, ok := s.resolve(r, key)
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
	})
}

// resolve hashes the presented key, looks it up, and performs a
// constant-time comparison to prevent timing side-channels.
func (s *SecurityHandler) resolve(r *http.Request, key string) (*auth.Identity, bool) {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	info, err := s.apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
	if err != nil {
		return nil, false
	}

	storedBytes, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, false
	}
	if subtle.ConstantTimeCompare(hash, storedBytes) != 1 {
		return nil, false
	}

	cust, err := s.customers.GetByID(r.Context(), info.CustomerID)
	if err != nil {
		return nil, false
	}

	return &auth.Identity{
		CustomerID: cust.ID,
		Name:       cust.Name,
		Roles:      cust.Roles,
	}, true
}

// RequireAuth rejects requests that carry no authenticated identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
