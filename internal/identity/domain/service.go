package domain

import (
	"context"
	"time"
)

// Service is the identity provider boundary: it turns an opaque
// credential into a Principal, or fails with ErrUnauthenticated.
type Service interface {
	Authenticate(ctx context.Context, credential string) (Principal, error)
	Issue(ctx context.Context, principal Principal, ttl time.Duration) (string, error)
}
